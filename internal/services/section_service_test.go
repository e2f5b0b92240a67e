package services

import (
	"encoding/json"
	"time"

	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/repository"
)

func (s *ServiceTestSuite) TestCreateSection_RecordsInitialStage() {
	section := s.createSection("Upper Weir", models.StageClearing)

	s.Equal(models.DefaultColorCode, section.ColorCode)
	s.Equal(models.PriorityNormal, section.Priority)

	history, err := s.sectionRepo.History(section.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(models.StageClearing, history[0].Stage)
	s.True(fixedNow.Equal(history[0].ChangedAt))
}

func (s *ServiceTestSuite) TestCreateSection_DefaultsToMitigation() {
	section := s.createSection("Mill Race", "")

	s.Equal(models.StageMitigation, section.CurrentStage)
	history, err := s.sectionRepo.History(section.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(models.StageMitigation, history[0].Stage)
}

func (s *ServiceTestSuite) TestCreateSection_Validation() {
	_, err := s.sections.CreateSection(SectionInput{
		Name:         "  ",
		ColorCode:    "red",
		CurrentStage: "demolition",
		BoundaryData: json.RawMessage(`{"type":`),
	})

	verr, ok := AsValidationError(err)
	s.Require().True(ok)
	s.Contains(verr.Fields, "name")
	s.Contains(verr.Fields, "color_code")
	s.Contains(verr.Fields, "current_stage")
	s.Contains(verr.Fields, "boundary_data")

	sections, err := s.sections.List()
	s.Require().NoError(err)
	s.Empty(sections)
}

func (s *ServiceTestSuite) TestCreateSection_DuplicateName() {
	s.createSection("Footbridge", "")

	_, err := s.sections.CreateSection(SectionInput{Name: "Footbridge"})
	s.ErrorIs(err, ErrSectionNameTaken)
}

// staleNameCheck reports every name as free, as a concurrent insert would
// look to a create that checked first.
type staleNameCheck struct {
	repository.SectionRepository
}

func (staleNameCheck) NameTaken(string, uint64) (bool, error) { return false, nil }

func (s *ServiceTestSuite) TestCreateSection_UniqueIndexMapsToNameTaken() {
	s.createSection("Footbridge", "")
	other := s.createSection("Stepping Stones", "")

	racing := *s.sections
	racing.sectionRepo = staleNameCheck{s.sectionRepo}

	_, err := racing.CreateSection(SectionInput{Name: "Footbridge"})
	s.ErrorIs(err, ErrSectionNameTaken)

	_, err = racing.UpdateSection(other.ID, SectionInput{Name: "Footbridge"})
	s.ErrorIs(err, ErrSectionNameTaken)
}

func (s *ServiceTestSuite) TestUpdateSection_HistoryOnlyOnStageChange() {
	section := s.createSection("Confluence", models.StageMitigation)

	s.cal.Now = func() time.Time { return fixedNow.Add(time.Hour) }
	s.sections.cal = s.cal

	updated, err := s.sections.UpdateSection(section.ID, SectionInput{
		Name:        "Confluence Reach",
		Description: "Where the brook joins",
		ColorCode:   "#1E90FF",
	})
	s.Require().NoError(err)
	s.Equal("Confluence Reach", updated.Name)
	s.Equal("#1e90ff", updated.ColorCode)
	s.Equal(models.StageMitigation, updated.CurrentStage)

	history, err := s.sectionRepo.History(section.ID)
	s.Require().NoError(err)
	s.Len(history, 1)

	_, err = s.sections.UpdateSection(section.ID, SectionInput{
		Name:         "Confluence Reach",
		CurrentStage: models.StagePlanting,
	})
	s.Require().NoError(err)

	history, err = s.sectionRepo.History(section.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(models.StagePlanting, history[0].Stage)
	s.Equal(models.StageMitigation, history[1].Stage)

	// Re-saving the same stage is not a change.
	_, err = s.sections.UpdateSection(section.ID, SectionInput{
		Name:         "Confluence Reach",
		CurrentStage: models.StagePlanting,
	})
	s.Require().NoError(err)
	history, err = s.sectionRepo.History(section.ID)
	s.Require().NoError(err)
	s.Len(history, 2)
}

func (s *ServiceTestSuite) TestUpdateSection_Geometry() {
	section := s.createSection("Meadow", "")

	updated, err := s.sections.UpdateSection(section.ID, SectionInput{
		Name:         "Meadow",
		BoundaryData: json.RawMessage(`{"type":"Polygon","coordinates":[]}`),
		CenterPoint:  json.RawMessage(`{"lat":51.5,"lng":-0.1}`),
	})
	s.Require().NoError(err)
	s.JSONEq(`{"lat":51.5,"lng":-0.1}`, string(updated.CenterPoint))

	updated, err = s.sections.UpdateSection(section.ID, SectionInput{
		Name:        "Meadow",
		CenterPoint: json.RawMessage(`null`),
	})
	s.Require().NoError(err)
	s.Nil(updated.CenterPoint)
	s.NotNil(updated.BoundaryData)
}

func (s *ServiceTestSuite) TestUpdateSection_NotFound() {
	_, err := s.sections.UpdateSection(999, SectionInput{Name: "Ghost"})
	s.ErrorIs(err, ErrSectionNotFound)
}

func (s *ServiceTestSuite) TestReorder() {
	a := s.createSection("A", "")
	b := s.createSection("B", "")
	c := s.createSection("C", "")

	s.Require().NoError(s.sections.Reorder([]uint64{c.ID, a.ID, b.ID}))

	sections, err := s.sections.List()
	s.Require().NoError(err)
	s.Require().Len(sections, 3)
	s.Equal([]string{"C", "A", "B"}, []string{sections[0].Name, sections[1].Name, sections[2].Name})

	s.ErrorIs(s.sections.Reorder([]uint64{a.ID, a.ID}), ErrInvalidSectionOrder)
	s.ErrorIs(s.sections.Reorder([]uint64{a.ID, 999}), ErrInvalidSectionOrder)

	sections, err = s.sections.List()
	s.Require().NoError(err)
	s.Equal("C", sections[0].Name)
}

func (s *ServiceTestSuite) TestDeleteSection_RemovesOwnedRowsAndBlobs() {
	section := s.createSection("Outfall", "")
	s.createTask(day(2026, 2, 20), section, models.AssigneeTeam, "Clear the grate")
	visit, err := s.visits.CreateVisit(VisitInput{
		SectionID: &section.ID,
		Metrics:   []MetricInput{{MetricType: models.MetricLitterGeneral, Value: 2}},
		Photos:    []PhotoInput{photo("grate.JPG", "Grate after clearing")},
	})
	s.Require().NoError(err)
	s.Require().Len(visit.Photos, 1)
	key := visit.Photos[0].File

	exists, err := s.store.Exists(key)
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(s.sections.DeleteSection(section.ID))

	_, err = s.sections.GetSection(section.ID)
	s.ErrorIs(err, ErrSectionNotFound)
	exists, err = s.store.Exists(key)
	s.Require().NoError(err)
	s.False(exists)

	var remaining int64
	s.db.Model(&models.Metric{}).Count(&remaining)
	s.Zero(remaining)
	s.db.Model(&models.Task{}).Count(&remaining)
	s.Zero(remaining)
	s.db.Model(&models.SectionStageHistory{}).Count(&remaining)
	s.Zero(remaining)

	s.ErrorIs(s.sections.DeleteSection(section.ID), ErrSectionNotFound)
}

func (s *ServiceTestSuite) TestDetail() {
	section := s.createSection("Lower Meadow", models.StageClearing)
	other := s.createSection("Elsewhere", "")

	s.logVisit(section, day(2026, 2, 2),
		MetricInput{MetricType: models.MetricLitterGeneral, Value: 4},
		MetricInput{MetricType: models.MetricLitterRecyclable, Value: 3},
		MetricInput{MetricType: models.MetricWeed, Label: "Himalayan balsam", Value: 10},
		MetricInput{MetricType: models.MetricWeed, Label: "Bramble", Value: 5},
	)
	s.logVisit(section, day(2026, 2, 9),
		MetricInput{MetricType: models.MetricWeed, Label: "Nettle", Value: 3},
		MetricInput{MetricType: models.MetricWeed, Label: "Dock", Value: 2},
		MetricInput{MetricType: models.MetricPlant, Label: "Willow", Value: 12},
	)
	s.logVisit(other, day(2026, 2, 9), MetricInput{MetricType: models.MetricLitterGeneral, Value: 50})

	s.createTask(fixedNow, section, models.AssigneeTeam, "Today's job")
	s.createTask(day(2026, 2, 25), section, models.AssigneeTeam, "Later job")
	s.createTask(day(2026, 2, 1), section, models.AssigneeTeam, "Past job")

	detail, err := s.sections.Detail(section.ID)
	s.Require().NoError(err)

	s.Equal(int64(4), detail.Totals.BagsGeneral)
	s.Equal(int64(3), detail.Totals.BagsRecyclable)
	s.Equal(int64(7), detail.Totals.Bags)
	s.Equal(int64(12), detail.Totals.Plants)
	s.Equal(int64(20), detail.Totals.Weeds)
	s.Equal([]string{"Himalayan balsam: 10", "Bramble: 5", "Nettle: 3", "Other: 2"}, detail.WeedingSummary)

	s.Require().Len(detail.PastVisits, 2)
	s.True(day(2026, 2, 9).Equal(detail.PastVisits[0].Date))
	s.Require().Len(detail.TodayTasks, 1)
	s.Equal("Today's job", detail.TodayTasks[0].Instructions)
	s.Require().Len(detail.FutureTasks, 1)
	s.Equal("Later job", detail.FutureTasks[0].Instructions)
	s.Len(detail.Timeline, 3)
	s.True(day(2026, 2, 11).Equal(detail.Today))
	s.Equal(0, detail.DaysInStage)
}

func (s *ServiceTestSuite) TestDetail_NoMetrics() {
	section := s.createSection("Quiet Reach", "")

	detail, err := s.sections.Detail(section.ID)
	s.Require().NoError(err)
	s.Zero(detail.Totals.Bags)
	s.Equal([]string{"None recorded"}, detail.WeedingSummary)
	s.Empty(detail.PastVisits)
}

func (s *ServiceTestSuite) TestDaysInStage() {
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	section := &models.Section{CreatedAt: created}
	now := time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC)

	s.Equal(9, DaysInStage(section, nil, now))

	history := []models.SectionStageHistory{
		{Stage: models.StagePlanting, ChangedAt: time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC)},
		{Stage: models.StageMitigation, ChangedAt: created},
	}
	s.Equal(4, DaysInStage(section, history, now))
	s.Equal(0, DaysInStage(section, history, created))
}

func (s *ServiceTestSuite) TestBuildTimeline() {
	visits := []models.VisitLog{
		{ID: 1, Date: day(2026, 2, 1), CreatedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)},
		{ID: 2, Date: day(2026, 2, 5), CreatedAt: time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)},
	}
	history := []models.SectionStageHistory{
		{ID: 7, Stage: models.StageClearing, ChangedAt: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)},
	}

	timeline := BuildTimeline(visits, history)
	s.Require().Len(timeline, 3)
	s.Equal(TimelineVisit, timeline[0].Kind)
	s.Equal(uint64(2), timeline[0].Visit.ID)
	s.Equal(TimelineStageChange, timeline[1].Kind)
	s.Equal(uint64(7), timeline[1].StageChange.ID)
	s.Equal(uint64(1), timeline[2].Visit.ID)
}
