package services

import (
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/utils"
)

func (s *ServiceTestSuite) TestCreateVisit_DropsZeroPlantAndWeedRows() {
	section := s.createSection("Bank", "")

	visit, err := s.visits.CreateVisit(VisitInput{
		SectionID: &section.ID,
		Date:      day(2026, 2, 10),
		Notes:     "Short session",
		Metrics: []MetricInput{
			{MetricType: models.MetricLitterGeneral, Value: 0},
			{MetricType: models.MetricLitterRecyclable, Value: 2},
			{MetricType: models.MetricPlant, Label: "Alder", Value: 0},
			{MetricType: models.MetricWeed, Label: "Balsam", Value: 0},
			{MetricType: models.MetricWeed, Label: " Bramble ", Value: 4},
		},
	})
	s.Require().NoError(err)
	s.Require().Len(visit.Metrics, 3)

	byType := map[models.MetricType][]models.Metric{}
	for _, m := range visit.Metrics {
		byType[m.MetricType] = append(byType[m.MetricType], m)
	}
	s.Len(byType[models.MetricLitterGeneral], 1)
	s.Zero(byType[models.MetricLitterGeneral][0].Value)
	s.Len(byType[models.MetricLitterRecyclable], 1)
	s.Empty(byType[models.MetricPlant])
	s.Require().Len(byType[models.MetricWeed], 1)
	s.Equal("Bramble", byType[models.MetricWeed][0].Label)
}

func (s *ServiceTestSuite) TestCreateVisit_DefaultsDateToToday() {
	section := s.createSection("Bank", "")

	visit := s.logVisit(section, fixedNow)
	s.True(day(2026, 2, 11).Equal(visit.Date))

	undated, err := s.visits.CreateVisit(VisitInput{SectionID: &section.ID})
	s.Require().NoError(err)
	s.True(day(2026, 2, 11).Equal(undated.Date))
}

func (s *ServiceTestSuite) TestCreateVisit_SectionFromTask() {
	section := s.createSection("Spillway", "")
	task := s.createTask(day(2026, 2, 11), section, models.AssigneeTeam, "Clear the spillway")

	visit, err := s.visits.CreateVisit(VisitInput{
		TaskID:  &task.ID,
		Metrics: []MetricInput{{MetricType: models.MetricLitterGeneral, Value: 3}},
	})
	s.Require().NoError(err)
	s.Equal(section.ID, visit.SectionID)
	s.Require().NotNil(visit.Task)
	s.True(visit.Task.IsCompleted)
}

func (s *ServiceTestSuite) TestCreateVisit_ValidationSavesNothing() {
	section := s.createSection("Bank", "")

	_, err := s.visits.CreateVisit(VisitInput{
		SectionID: &section.ID,
		Metrics: []MetricInput{
			{MetricType: models.MetricLitterGeneral, Value: 5},
			{MetricType: models.MetricPlant, Value: -1},
			{MetricType: "fish", Value: 1},
		},
		Photos: []PhotoInput{
			photo("ok.jpg", "Before and after shot"),
			photo("short.jpg", "Too short"),
		},
	})

	verr, ok := AsValidationError(err)
	s.Require().True(ok)
	s.Contains(verr.Fields, "metrics[1].value")
	s.Contains(verr.Fields, "metrics[2].metric_type")
	s.Require().Contains(verr.Fields, "photos[1].description")
	s.Equal("Description must be at least 10 characters when uploading a photo.", verr.Fields["photos[1].description"][0])

	var visits, metrics, photos int64
	s.db.Model(&models.VisitLog{}).Count(&visits)
	s.db.Model(&models.Metric{}).Count(&metrics)
	s.db.Model(&models.Photo{}).Count(&photos)
	s.Zero(visits)
	s.Zero(metrics)
	s.Zero(photos)

	var files int
	_ = afero.Walk(s.fs, "/", func(_ string, info os.FileInfo, _ error) error {
		if info != nil && !info.IsDir() {
			files++
		}
		return nil
	})
	s.Zero(files)
}

func (s *ServiceTestSuite) TestCreateVisit_RequiresSection() {
	_, err := s.visits.CreateVisit(VisitInput{Notes: "Where was this?"})
	verr, ok := AsValidationError(err)
	s.Require().True(ok)
	s.Contains(verr.Fields, "section_id")

	_, err = s.visits.CreateVisit(VisitInput{TaskID: ptr(uint64(404)), SectionID: ptr(uint64(404))})
	verr, ok = AsValidationError(err)
	s.Require().True(ok)
	s.Contains(verr.Fields, "task_id")
	s.Contains(verr.Fields, "section_id")
}

func (s *ServiceTestSuite) TestCreateVisit_StoresPhotos() {
	section := s.createSection("Bank", "")

	visit, err := s.visits.CreateVisit(VisitInput{
		SectionID: &section.ID,
		Photos: []PhotoInput{
			photo("Before.PNG", ""),
			{Filename: "empty-row.jpg"},
			photo("after.jpg", "Bank after the clear-up"),
		},
	})
	s.Require().NoError(err)
	s.Require().Len(visit.Photos, 2)

	for _, p := range visit.Photos {
		s.True(strings.HasPrefix(p.File, "photos/2026/02/11/"))
		s.Equal(section.ID, p.SectionID)
		exists, err := s.store.Exists(p.File)
		s.Require().NoError(err)
		s.True(exists)
	}
	s.True(strings.HasSuffix(visit.Photos[0].File, ".png"))
	s.True(strings.HasPrefix(s.photos.URL(visit.Photos[0]), "/media/photos/"))
}

func (s *ServiceTestSuite) TestListVisits_NewestFirst() {
	section := s.createSection("Bank", "")
	s.logVisit(section, day(2026, 2, 1))
	s.logVisit(section, day(2026, 2, 5))
	s.logVisit(section, day(2026, 2, 3))

	visits, total, err := s.visits.ListVisits(utils.PaginationParams{Page: 1, Limit: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(visits, 2)
	s.True(day(2026, 2, 5).Equal(visits[0].Date))
	s.True(day(2026, 2, 3).Equal(visits[1].Date))

	_, err = s.visits.GetVisit(404)
	s.ErrorIs(err, ErrVisitNotFound)
}
