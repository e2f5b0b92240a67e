package services

import (
	"github.com/riverkeep/river-ops/internal/models"
)

func (s *ServiceTestSuite) TestCleanupOrphans() {
	section := s.createSection("Bank", "")
	visit, err := s.visits.CreateVisit(VisitInput{
		SectionID: &section.ID,
		Photos: []PhotoInput{
			photo("kept.jpg", "Still on disk"),
			photo("lost.jpg", "Removed from disk"),
		},
	})
	s.Require().NoError(err)
	s.Require().Len(visit.Photos, 2)
	lost := visit.Photos[1]
	s.Require().NoError(s.store.Delete(lost.File))

	blank := models.Photo{SectionID: section.ID, File: ""}
	s.Require().NoError(s.db.Create(&blank).Error)

	dry, err := s.photos.CleanupOrphans(true)
	s.Require().NoError(err)
	s.Equal(3, dry.Checked)
	s.Len(dry.Deleted, 2)

	var count int64
	s.db.Model(&models.Photo{}).Count(&count)
	s.Equal(int64(3), count)

	result, err := s.photos.CleanupOrphans(false)
	s.Require().NoError(err)
	s.Len(result.Deleted, 2)

	var remaining []models.Photo
	s.Require().NoError(s.db.Find(&remaining).Error)
	s.Require().Len(remaining, 1)
	s.Equal(visit.Photos[0].ID, remaining[0].ID)
}
