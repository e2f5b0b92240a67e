package services

import (
	"context"
	"errors"
	"strings"

	"github.com/riverkeep/river-ops/internal/models"
)

func (s *ServiceTestSuite) TestCreateTask_FillsFromTemplate() {
	section := s.createSection("Weir Pool", "")
	template := s.createTemplate("Quarterly report", models.TaskTypeAdmin, models.AssigneeManager, "Compile the quarterly figures")

	task, err := s.tasks.CreateTask(TaskInput{
		Date:       day(2026, 2, 20),
		SectionID:  &section.ID,
		TemplateID: &template.ID,
	})
	s.Require().NoError(err)

	s.Equal("Compile the quarterly figures", task.Instructions)
	s.Equal(models.AssigneeManager, task.AssigneeType)
	s.Require().NotNil(task.Template)
	s.Equal("admin", task.TaskType())
	s.Require().NotNil(task.Section)
	s.Equal("Weir Pool", task.Section.Name)
}

func (s *ServiceTestSuite) TestCreateTask_ExplicitValuesWin() {
	template := s.createTemplate("Balsam pull", models.TaskTypeWeeding, models.AssigneeTeam, "Pull balsam")

	task, err := s.tasks.CreateTask(TaskInput{
		Date:         day(2026, 2, 20),
		TemplateID:   &template.ID,
		AssigneeType: models.AssigneeManager,
		Instructions: "Survey balsam extent",
	})
	s.Require().NoError(err)
	s.Equal("Survey balsam extent", task.Instructions)
	s.Equal(models.AssigneeManager, task.AssigneeType)
}

func (s *ServiceTestSuite) TestCreateTask_Validation() {
	_, err := s.tasks.CreateTask(TaskInput{SectionID: ptr(uint64(404)), AssigneeType: "volunteer"})

	verr, ok := AsValidationError(err)
	s.Require().True(ok)
	s.Contains(verr.Fields, "date")
	s.Contains(verr.Fields, "section_id")
	s.Contains(verr.Fields, "assignee_type")
	s.Contains(verr.Fields, "instructions")
}

func (s *ServiceTestSuite) TestCreateTask_RetiredTemplate() {
	template := s.createTemplate("Old litter run", models.TaskTypeLitterRun, models.AssigneeTeam, "Walk the bank")
	_, err := s.templates.RetireTemplate(template.ID)
	s.Require().NoError(err)

	_, err = s.tasks.CreateTask(TaskInput{Date: day(2026, 2, 20), TemplateID: &template.ID})
	verr, ok := AsValidationError(err)
	s.Require().True(ok)
	s.Contains(verr.Fields, "template_id")
}

func (s *ServiceTestSuite) TestUpdateTask_KeepsRetiredTemplate() {
	template := s.createTemplate("Litter run", models.TaskTypeLitterRun, models.AssigneeTeam, "Walk the bank")
	task, err := s.tasks.CreateTask(TaskInput{Date: day(2026, 2, 20), TemplateID: &template.ID})
	s.Require().NoError(err)

	_, err = s.templates.RetireTemplate(template.ID)
	s.Require().NoError(err)

	updated, err := s.tasks.UpdateTask(task.ID, TaskInput{
		Date:         day(2026, 2, 21),
		TemplateID:   &template.ID,
		Instructions: "Walk both banks",
		IsCompleted:  true,
	})
	s.Require().NoError(err)
	s.True(day(2026, 2, 21).Equal(updated.Date))
	s.Equal("Walk both banks", updated.Instructions)
	s.True(updated.IsCompleted)
	s.Require().NotNil(updated.TemplateID)
	s.Equal(template.ID, *updated.TemplateID)
}

func (s *ServiceTestSuite) TestUpdateTask_NotFound() {
	_, err := s.tasks.UpdateTask(404, TaskInput{Date: day(2026, 2, 21), Instructions: "x"})
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestCompleteTask() {
	section := s.createSection("Old Mill", "")
	task := s.createTask(day(2026, 2, 9), section, models.AssigneeTeam, "Clear the sluice")

	visit, err := s.tasks.CompleteTask(task.ID)
	s.Require().NoError(err)
	s.Equal(section.ID, visit.SectionID)
	s.True(day(2026, 2, 11).Equal(visit.Date))
	s.Equal("Task completed: Clear the sluice", visit.Notes)
	s.Require().NotNil(visit.TaskID)
	s.Equal(task.ID, *visit.TaskID)

	reloaded, err := s.tasks.GetTask(task.ID)
	s.Require().NoError(err)
	s.True(reloaded.IsCompleted)
}

func (s *ServiceTestSuite) TestCompleteTask_WithoutSection() {
	task := s.createTask(day(2026, 2, 9), nil, models.AssigneeManager, "Order gloves")

	_, err := s.tasks.CompleteTask(task.ID)
	s.ErrorIs(err, ErrTaskHasNoSection)

	reloaded, err := s.tasks.GetTask(task.ID)
	s.Require().NoError(err)
	s.False(reloaded.IsCompleted)

	_, err = s.tasks.CompleteTask(404)
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestDeleteTask_KeepsVisits() {
	section := s.createSection("Ford", "")
	task := s.createTask(day(2026, 2, 9), section, models.AssigneeTeam, "Litter pick")
	visit, err := s.tasks.CompleteTask(task.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.tasks.DeleteTask(task.ID))
	s.ErrorIs(s.tasks.DeleteTask(task.ID), ErrTaskNotFound)

	reloaded, err := s.visits.GetVisit(visit.ID)
	s.Require().NoError(err)
	s.Nil(reloaded.TaskID)
}

func (s *ServiceTestSuite) TestPrefillVisit() {
	section := s.createSection("Ford", "")
	template := s.createTemplate("Balsam pull", models.TaskTypeWeeding, models.AssigneeTeam, "Pull balsam")
	task, err := s.tasks.CreateTask(TaskInput{Date: day(2026, 2, 14), SectionID: &section.ID, TemplateID: &template.ID})
	s.Require().NoError(err)

	prefill, err := s.tasks.PrefillVisit(&task.ID, nil)
	s.Require().NoError(err)
	s.Equal("weeding", prefill.TaskType)
	s.Equal("Balsam pull", prefill.TemplateName)
	s.Equal("Pull balsam", prefill.Notes)
	s.True(day(2026, 2, 14).Equal(prefill.Date))
	s.Require().NotNil(prefill.SectionID)
	s.Equal(section.ID, *prefill.SectionID)

	unplanned, err := s.tasks.PrefillVisit(nil, &section.ID)
	s.Require().NoError(err)
	s.Equal("unplanned", unplanned.TaskType)
	s.Nil(unplanned.Task)
	s.True(day(2026, 2, 11).Equal(unplanned.Date))

	_, err = s.tasks.PrefillVisit(ptr(uint64(404)), nil)
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestDraftTasks() {
	section := s.createSection("Upper Weir", "")
	completer := &fakeCompleter{content: "```json\n" + `[
		{"date": "2026-02-12", "section": "upper weir", "assignee_type": "team", "instructions": "Pull balsam on the north bank"},
		{"date": "2025-12-01", "section": "Nowhere", "assignee_type": "boss", "instructions": "Order more grabbers"},
		{"date": "2026-02-13", "section": "", "assignee_type": "manager", "instructions": "  "}
	]` + "\n```"}
	s.tasks.aiService = NewAIServiceWithClient(completer)

	drafts, err := s.tasks.DraftTasks(context.Background(), "Tomorrow pull balsam at the weir, and order grabbers")
	s.Require().NoError(err)
	s.Require().Len(drafts, 2)

	s.True(day(2026, 2, 12).Equal(drafts[0].Date))
	s.Require().NotNil(drafts[0].SectionID)
	s.Equal(section.ID, *drafts[0].SectionID)
	s.Equal(models.AssigneeTeam, drafts[0].AssigneeType)

	s.True(day(2026, 2, 11).Equal(drafts[1].Date))
	s.Nil(drafts[1].SectionID)
	s.Equal(models.AssigneeTeam, drafts[1].AssigneeType)

	s.Require().Len(completer.prompts, 1)
	s.True(strings.Contains(completer.prompts[0], "2026-02-11"))
	s.True(strings.Contains(completer.prompts[0], "Upper Weir"))

	var count int64
	s.db.Model(&models.Task{}).Count(&count)
	s.Zero(count)
}

func (s *ServiceTestSuite) TestDraftTasks_Failures() {
	_, err := s.tasks.DraftTasks(context.Background(), "anything")
	s.ErrorIs(err, ErrAIServiceNotConfigured)

	s.tasks.aiService = NewAIServiceWithClient(&fakeCompleter{content: "[]"})
	_, err = s.tasks.DraftTasks(context.Background(), "nothing to do")
	s.ErrorIs(err, ErrAINoTasksGenerated)

	s.tasks.aiService = NewAIServiceWithClient(&fakeCompleter{content: `[{"date":"2026-02-12","instructions":""}]`})
	_, err = s.tasks.DraftTasks(context.Background(), "blank")
	s.ErrorIs(err, ErrAINoValidTasks)

	s.tasks.aiService = NewAIServiceWithClient(&fakeCompleter{err: errors.New("rate limited")})
	_, err = s.tasks.DraftTasks(context.Background(), "anything")
	s.ErrorContains(err, "rate limited")
}
