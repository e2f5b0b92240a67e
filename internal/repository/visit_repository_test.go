package repository

import (
	"github.com/riverkeep/river-ops/internal/aggregate"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/utils"
)

func (s *RepositoryTestSuite) TestCreateWithChildren_CompletesTask() {
	section := s.createSection("Weir", 0)
	task := s.newTask(day(2026, 2, 15), section, models.AssigneeTeam, "run")

	visit := &models.VisitLog{
		TaskID:    &task.ID,
		SectionID: section.ID,
		Date:      day(2026, 2, 15),
		Notes:     "done",
		Metrics: []models.Metric{
			{MetricType: models.MetricLitterGeneral, Value: 0},
			{MetricType: models.MetricWeed, Label: "Wattle", Value: 12},
		},
		Photos: []models.Photo{{File: "photos/2026/02/15/a.jpg", Description: "upstream bank"}},
	}
	s.Require().NoError(s.visits.CreateWithChildren(visit))

	reloaded, err := s.visits.FindByID(visit.ID)
	s.Require().NoError(err)
	s.Len(reloaded.Metrics, 2)
	s.Require().Len(reloaded.Photos, 1)
	s.Equal(section.ID, reloaded.Photos[0].SectionID)
	s.False(reloaded.Photos[0].Timestamp.IsZero())

	completed, err := s.tasks.FindByID(task.ID)
	s.Require().NoError(err)
	s.True(completed.IsCompleted)
}

func (s *RepositoryTestSuite) TestCreateWithChildren_MissingTaskRollsBack() {
	section := s.createSection("Weir", 0)
	missing := uint64(404)

	err := s.visits.CreateWithChildren(&models.VisitLog{
		TaskID:    &missing,
		SectionID: section.ID,
		Date:      day(2026, 2, 15),
		Metrics:   []models.Metric{{MetricType: models.MetricPlant, Value: 3}},
	})
	s.Error(err)

	var visits, metrics int64
	s.Require().NoError(s.db.Model(&models.VisitLog{}).Count(&visits).Error)
	s.Require().NoError(s.db.Model(&models.Metric{}).Count(&metrics).Error)
	s.Zero(visits)
	s.Zero(metrics)
}

func (s *RepositoryTestSuite) TestVisitOrdering() {
	section := s.createSection("Weir", 0)
	for _, d := range []int{3, 9, 5} {
		s.Require().NoError(s.visits.CreateWithChildren(&models.VisitLog{SectionID: section.ID, Date: day(2026, 2, d)}))
	}

	recent, err := s.visits.Recent(2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(9, recent[0].Date.Day())
	s.Equal(5, recent[1].Date.Day())
	s.Require().NotNil(recent[0].Section)

	page, total, err := s.visits.List(utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(page, 1)
	s.Equal(3, page[0].Date.Day())

	bySection, err := s.visits.ListBySection(section.ID)
	s.Require().NoError(err)
	s.Len(bySection, 3)
}

func (s *RepositoryTestSuite) TestMetricSums() {
	weir := s.createSection("Weir", 0)
	bend := s.createSection("Bend", 1)

	s.Require().NoError(s.visits.CreateWithChildren(&models.VisitLog{
		SectionID: weir.ID,
		Date:      day(2026, 2, 1),
		Metrics: []models.Metric{
			{MetricType: models.MetricLitterGeneral, Value: 5},
			{MetricType: models.MetricLitterRecyclable, Value: 3},
			{MetricType: models.MetricPlant, Label: "Cape Reed", Value: 10},
			{MetricType: models.MetricWeed, Label: "Wattle", Value: 10},
			{MetricType: models.MetricWeed, Label: "Kikuyu", Value: 5},
		},
	}))
	s.Require().NoError(s.visits.CreateWithChildren(&models.VisitLog{
		SectionID: bend.ID,
		Date:      day(2026, 2, 2),
		Metrics: []models.Metric{
			{MetricType: models.MetricLitterGeneral, Value: 2},
			{MetricType: models.MetricWeed, Label: "Wattle", Value: 5},
			{MetricType: models.MetricWeed, Label: "Other-label", Value: 3},
		},
	}))

	sums, err := s.metrics.SumByType(nil)
	s.Require().NoError(err)
	totals := aggregate.TotalsFromSums(sums)
	s.Equal(aggregate.Totals{BagsGeneral: 7, BagsRecyclable: 3, Bags: 10, Plants: 10, Weeds: 23}, totals)

	labels, err := s.metrics.SumWeedsByLabel(nil)
	s.Require().NoError(err)
	s.Equal([]string{"Wattle: 15", "Kikuyu: 5", "Other-label: 3"}, aggregate.WeedingSummary(labels, totals.Weeds))

	sums, err = s.metrics.SumByType(&bend.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), aggregate.TotalsFromSums(sums).Bags)

	labels, err = s.metrics.SumWeedsByLabel(&bend.ID)
	s.Require().NoError(err)
	s.Equal([]aggregate.LabelSum{{Label: "Wattle", Total: 5}, {Label: "Other-label", Total: 3}}, labels)
}

func (s *RepositoryTestSuite) TestMetricSums_Empty() {
	sums, err := s.metrics.SumByType(nil)
	s.Require().NoError(err)
	s.Equal(aggregate.Totals{}, aggregate.TotalsFromSums(sums))

	labels, err := s.metrics.SumWeedsByLabel(nil)
	s.Require().NoError(err)
	s.Equal([]string{aggregate.NoneRecorded}, aggregate.WeedingSummary(labels, 0))
}

func (s *RepositoryTestSuite) TestPhotoBatches() {
	section := s.createSection("Weir", 0)
	photos := make([]models.Photo, 5)
	for i := range photos {
		photos[i] = models.Photo{File: "photos/x.jpg"}
	}
	s.Require().NoError(s.visits.CreateWithChildren(&models.VisitLog{SectionID: section.ID, Date: day(2026, 2, 1), Photos: photos}))

	repo := NewPhotoRepository(s.db)
	var batches, seen int
	var ids []uint64
	s.Require().NoError(repo.EachBatch(2, func(batch []models.Photo) error {
		batches++
		seen += len(batch)
		for _, p := range batch {
			ids = append(ids, p.ID)
		}
		return nil
	}))
	s.Equal(3, batches)
	s.Equal(5, seen)

	s.Require().NoError(repo.DeleteByIDs(ids[:2]))
	remaining, err := repo.ListBySection(section.ID)
	s.Require().NoError(err)
	s.Len(remaining, 3)
}
