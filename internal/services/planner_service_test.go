package services

import (
	"time"

	"github.com/riverkeep/river-ops/internal/calendar"
	"github.com/riverkeep/river-ops/internal/models"
)

func (s *ServiceTestSuite) TestMonthly_February2026() {
	section := s.createSection("Weir", "")
	s.createTask(day(2026, 1, 25), section, models.AssigneeTeam, "outside before")
	s.createTask(day(2026, 1, 26), section, models.AssigneeTeam, "padding start")
	s.createTask(day(2026, 2, 14), section, models.AssigneeTeam, "mid month")
	s.createTask(day(2026, 2, 14), nil, models.AssigneeManager, "mid month office")
	s.createTask(day(2026, 3, 1), section, models.AssigneeTeam, "padding end")
	s.createTask(day(2026, 3, 2), section, models.AssigneeTeam, "outside after")

	plan, err := s.planner.Monthly("2026", "2")
	s.Require().NoError(err)

	s.Equal(calendar.YearMonth{Year: 2026, Month: time.February}, plan.Month)
	s.Require().Len(plan.Weeks, 5)
	s.True(day(2026, 1, 26).Equal(plan.Weeks[0][0]))
	s.True(day(2026, 3, 1).Equal(plan.Weeks[4][6]))

	s.Len(plan.TasksByDate, 3)
	s.Len(plan.TasksByDate["2026-01-26"], 1)
	s.Len(plan.TasksByDate["2026-02-14"], 2)
	s.Len(plan.TasksByDate["2026-03-01"], 1)
	s.NotContains(plan.TasksByDate, "2026-01-25")
	s.NotContains(plan.TasksByDate, "2026-03-02")

	s.Equal(calendar.YearMonth{Year: 2026, Month: time.January}, plan.Prev)
	s.Equal(calendar.YearMonth{Year: 2026, Month: time.March}, plan.Next)
	s.True(plan.IsCurrentMonth)
	s.Len(plan.Sections, 1)
}

func (s *ServiceTestSuite) TestMonthly_FallsBackToToday() {
	plan, err := s.planner.Monthly("twenty", "13")
	s.Require().NoError(err)
	s.Equal(calendar.YearMonth{Year: 2026, Month: time.February}, plan.Month)

	plan, err = s.planner.Monthly("2025", "12")
	s.Require().NoError(err)
	s.Equal(calendar.YearMonth{Year: 2026, Month: time.January}, plan.Next)
	s.False(plan.IsCurrentMonth)
	for _, week := range plan.Weeks {
		s.Equal(time.Monday, week[0].Weekday())
	}
}

func (s *ServiceTestSuite) TestMonthly_SplitsTemplatesByAssignee() {
	s.createTemplate("Litter run", models.TaskTypeLitterRun, models.AssigneeTeam, "Walk the bank")
	s.createTemplate("Report", models.TaskTypeAdmin, models.AssigneeManager, "Write it up")
	retired := s.createTemplate("Old run", models.TaskTypeLitterRun, models.AssigneeTeam, "Retired")
	_, err := s.templates.RetireTemplate(retired.ID)
	s.Require().NoError(err)

	plan, err := s.planner.Monthly("", "")
	s.Require().NoError(err)
	s.Require().Len(plan.TeamTemplates, 1)
	s.Equal("Litter run", plan.TeamTemplates[0].Name)
	s.Require().Len(plan.ManagerTemplates, 1)
	s.Equal("Report", plan.ManagerTemplates[0].Name)
}

func (s *ServiceTestSuite) TestWeekly() {
	section := s.createSection("Weir", "")
	s.createTask(day(2026, 2, 8), section, models.AssigneeTeam, "last sunday")
	s.createTask(day(2026, 2, 9), section, models.AssigneeTeam, "monday")
	s.createTask(day(2026, 2, 15), section, models.AssigneeTeam, "sunday")

	plan, err := s.planner.Weekly("")
	s.Require().NoError(err)
	s.True(day(2026, 2, 9).Equal(plan.Window.Start))
	s.True(day(2026, 2, 15).Equal(plan.Window.End))
	s.Len(plan.Days, 7)
	s.Len(plan.Tasks, 2)
	s.Contains(plan.TasksByDate, "2026-02-09")
	s.Contains(plan.TasksByDate, "2026-02-15")
	s.True(day(2026, 2, 2).Equal(plan.PrevWeek))
	s.True(day(2026, 2, 16).Equal(plan.NextWeek))

	plan, err = s.planner.Weekly("2026-02-08")
	s.Require().NoError(err)
	s.True(day(2026, 2, 2).Equal(plan.Window.Start))
	s.Len(plan.Tasks, 1)

	plan, err = s.planner.Weekly("not-a-date")
	s.Require().NoError(err)
	s.True(day(2026, 2, 9).Equal(plan.Window.Start))
}

func (s *ServiceTestSuite) TestWeekly_SundayStart() {
	s.planner.cal.WeekStart = time.Sunday

	plan, err := s.planner.Weekly("2026-02-11")
	s.Require().NoError(err)
	s.True(day(2026, 2, 8).Equal(plan.Window.Start))
	s.True(day(2026, 2, 14).Equal(plan.Window.End))
}

func (s *ServiceTestSuite) TestDaily() {
	alpha := s.createSection("Alpha", "")
	s.createTask(day(2026, 2, 11), alpha, models.AssigneeTeam, "team alpha")
	s.createTask(day(2026, 2, 11), nil, models.AssigneeManager, "office")
	s.createTask(day(2026, 2, 12), alpha, models.AssigneeTeam, "tomorrow")

	agenda, err := s.planner.Daily("")
	s.Require().NoError(err)
	s.True(day(2026, 2, 11).Equal(agenda.Date))
	s.Require().Len(agenda.Tasks, 2)
	s.Equal("office", agenda.Tasks[0].Instructions)
	s.Equal("team alpha", agenda.Tasks[1].Instructions)

	agenda, err = s.planner.Daily("2026-02-12")
	s.Require().NoError(err)
	s.Require().Len(agenda.Tasks, 1)
	s.Equal("tomorrow", agenda.Tasks[0].Instructions)

	agenda, err = s.planner.Daily("12/02/2026")
	s.Require().NoError(err)
	s.True(day(2026, 2, 11).Equal(agenda.Date))
}
