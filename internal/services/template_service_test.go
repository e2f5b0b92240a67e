package services

import (
	"github.com/riverkeep/river-ops/internal/models"
)

func (s *ServiceTestSuite) TestTemplates_ActiveFirstAndRetire() {
	a := s.createTemplate("Alpha run", models.TaskTypeLitterRun, models.AssigneeTeam, "Walk")
	s.createTemplate("Beta report", models.TaskTypeAdmin, models.AssigneeManager, "Write")

	retired, err := s.templates.RetireTemplate(a.ID)
	s.Require().NoError(err)
	s.False(retired.IsActive)

	all, err := s.templates.ListTemplates()
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("Beta report", all[0].Name)
	s.Equal("Alpha run", all[1].Name)

	manager := models.AssigneeManager
	active, err := s.templates.ActiveTemplates(&manager)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("Beta report", active[0].Name)

	_, err = s.templates.RetireTemplate(404)
	s.ErrorIs(err, ErrTemplateNotFound)
}

func (s *ServiceTestSuite) TestTemplates_Validation() {
	_, err := s.templates.CreateTemplate(TemplateInput{TaskType: "juggling", AssigneeType: "boss"})

	verr, ok := AsValidationError(err)
	s.Require().True(ok)
	s.Contains(verr.Fields, "name")
	s.Contains(verr.Fields, "task_type")
	s.Contains(verr.Fields, "assignee_type")
	s.Contains(verr.Fields, "default_instructions")
}

func (s *ServiceTestSuite) TestTemplates_Update() {
	t := s.createTemplate("Planting", models.TaskTypePlanting, "", "Plant whips")
	s.Equal(models.AssigneeTeam, t.AssigneeType)

	updated, err := s.templates.UpdateTemplate(t.ID, TemplateInput{
		Name:                "Planting day",
		TaskType:            models.TaskTypePlanting,
		DefaultInstructions: "Plant whips and stake them",
	})
	s.Require().NoError(err)
	s.Equal("Planting day", updated.Name)
	s.Equal(models.AssigneeTeam, updated.AssigneeType)

	_, err = s.templates.UpdateTemplate(404, TemplateInput{Name: "x"})
	s.ErrorIs(err, ErrTemplateNotFound)
}
