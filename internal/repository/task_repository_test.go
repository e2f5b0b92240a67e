package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/models"
)

func (s *RepositoryTestSuite) newTask(date time.Time, section *models.Section, assignee models.AssigneeType, instructions string) *models.Task {
	task := &models.Task{Date: date, AssigneeType: assignee, Instructions: instructions}
	if section != nil {
		task.SectionID = &section.ID
	}
	s.Require().NoError(s.tasks.Create(task))
	return task
}

func (s *RepositoryTestSuite) TestCreate_NormalisesDate() {
	task := s.newTask(time.Date(2026, 2, 15, 17, 45, 0, 0, time.UTC), nil, models.AssigneeTeam, "late entry")

	reloaded, err := s.tasks.FindByID(task.ID)
	s.Require().NoError(err)
	s.True(day(2026, 2, 15).Equal(reloaded.Date))
}

func (s *RepositoryTestSuite) TestListBetween() {
	section := s.createSection("Weir", 0)
	s.newTask(day(2026, 1, 31), section, models.AssigneeTeam, "before")
	s.newTask(day(2026, 2, 1), section, models.AssigneeTeam, "first")
	s.newTask(day(2026, 2, 28), nil, models.AssigneeManager, "last")
	s.newTask(day(2026, 3, 1), section, models.AssigneeTeam, "after")

	tasks, err := s.tasks.ListBetween(day(2026, 2, 1), day(2026, 2, 28))
	s.Require().NoError(err)
	s.Require().Len(tasks, 2)
	s.Equal("first", tasks[0].Instructions)
	s.Require().NotNil(tasks[0].Section)
	s.Equal("Weir", tasks[0].Section.Name)
	s.Equal("last", tasks[1].Instructions)
	s.Nil(tasks[1].Section)
}

func (s *RepositoryTestSuite) TestListForDay_Ordering() {
	zulu := s.createSection("Zulu", 0)
	alpha := s.createSection("Alpha", 1)
	date := day(2026, 2, 15)

	s.newTask(date, nil, models.AssigneeTeam, "team no section")
	s.newTask(date, zulu, models.AssigneeTeam, "team zulu")
	s.newTask(date, alpha, models.AssigneeTeam, "team alpha")
	s.newTask(date, zulu, models.AssigneeManager, "manager zulu")
	s.newTask(date, nil, models.AssigneeManager, "manager no section")
	s.newTask(day(2026, 2, 16), alpha, models.AssigneeManager, "tomorrow")

	tasks, err := s.tasks.ListForDay(date)
	s.Require().NoError(err)

	var got []string
	for _, t := range tasks {
		got = append(got, t.Instructions)
	}
	s.Equal([]string{
		"manager zulu",
		"manager no section",
		"team alpha",
		"team zulu",
		"team no section",
	}, got)
}

func (s *RepositoryTestSuite) TestSectionTaskQueries() {
	section := s.createSection("Weir", 0)
	today := day(2026, 2, 15)

	s.newTask(today, section, models.AssigneeTeam, "today")
	s.newTask(day(2026, 2, 14), section, models.AssigneeTeam, "yesterday")
	upcoming := s.newTask(day(2026, 2, 20), section, models.AssigneeTeam, "upcoming")
	done := s.newTask(day(2026, 2, 18), section, models.AssigneeTeam, "done")
	done.IsCompleted = true
	s.Require().NoError(s.tasks.Update(done))

	onDay, err := s.tasks.ListBySectionOnDate(section.ID, today)
	s.Require().NoError(err)
	s.Require().Len(onDay, 1)
	s.Equal("today", onDay[0].Instructions)

	future, err := s.tasks.ListUpcomingBySection(section.ID, today)
	s.Require().NoError(err)
	s.Require().Len(future, 1)
	s.Equal(upcoming.ID, future[0].ID)
}

func (s *RepositoryTestSuite) TestDelete_DetachesVisits() {
	section := s.createSection("Weir", 0)
	task := s.newTask(day(2026, 2, 15), section, models.AssigneeTeam, "run")
	visit := &models.VisitLog{TaskID: &task.ID, SectionID: section.ID, Date: day(2026, 2, 15)}
	s.Require().NoError(s.visits.CreateWithChildren(visit))

	s.Require().NoError(s.tasks.Delete(task.ID))

	reloaded, err := s.visits.FindByID(visit.ID)
	s.Require().NoError(err)
	s.Nil(reloaded.TaskID)

	s.ErrorIs(s.tasks.Delete(task.ID), gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestTemplateRetireKeepsTaskReference() {
	templates := NewTemplateRepository(s.db)
	tpl := &models.TaskTemplate{
		Name:                "Litter sweep",
		TaskType:            models.TaskTypeLitterRun,
		AssigneeType:        models.AssigneeTeam,
		DefaultInstructions: "Sweep the banks",
		IsActive:            true,
	}
	s.Require().NoError(templates.Create(tpl))

	task := &models.Task{Date: day(2026, 2, 15), AssigneeType: models.AssigneeTeam, Instructions: "sweep", TemplateID: &tpl.ID}
	s.Require().NoError(s.tasks.Create(task))

	s.Require().NoError(templates.Retire(tpl.ID))

	active, err := templates.List(TemplateFilter{ActiveOnly: true})
	s.Require().NoError(err)
	s.Empty(active)

	all, err := templates.List(TemplateFilter{})
	s.Require().NoError(err)
	s.Len(all, 1)

	reloaded, err := s.tasks.FindByID(task.ID, "Template")
	s.Require().NoError(err)
	s.Require().NotNil(reloaded.Template)
	s.Equal("Litter sweep", reloaded.Template.Name)
	s.False(reloaded.Template.IsActive)
	s.Equal(string(models.TaskTypeLitterRun), reloaded.TaskType())

	s.ErrorIs(templates.Retire(999), gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestTemplateListFilter() {
	templates := NewTemplateRepository(s.db)
	for _, tpl := range []*models.TaskTemplate{
		{Name: "Weekly report", TaskType: models.TaskTypeAdmin, AssigneeType: models.AssigneeManager, DefaultInstructions: "Write it", IsActive: true},
		{Name: "Bag litter", TaskType: models.TaskTypeLitterRun, AssigneeType: models.AssigneeTeam, DefaultInstructions: "Bag it", IsActive: true},
		{Name: "Audit", TaskType: models.TaskTypeAdmin, AssigneeType: models.AssigneeManager, DefaultInstructions: "Check it", IsActive: true},
	} {
		s.Require().NoError(templates.Create(tpl))
	}

	all, err := templates.List(TemplateFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("Audit", all[0].Name)
	s.Equal("Weekly report", all[1].Name)
	s.Equal("Bag litter", all[2].Name)

	managers, err := templates.List(TemplateFilter{AssigneeType: ptr(models.AssigneeManager)})
	s.Require().NoError(err)
	s.Len(managers, 2)
}
