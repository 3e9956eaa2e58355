package app

import (
	"context"
	"database/sql"

	"github.com/kalendra/kalendra/internal/config"
	"github.com/kalendra/kalendra/internal/event_bus"
	"github.com/kalendra/kalendra/internal/utils"
	"github.com/kalendra/kalendra/pkg/calendar_event"
	"github.com/kalendra/kalendra/pkg/consistency"
	"github.com/kalendra/kalendra/pkg/duty_schedule"
	"github.com/kalendra/kalendra/pkg/event_sync"
	"github.com/kalendra/kalendra/pkg/one_on_one"
	"github.com/kalendra/kalendra/pkg/team_member"
	"github.com/kalendra/kalendra/pkg/tenant"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus *event_bus.EventBus

	TenantRepo tenant.Repository

	TeamMemberRepo    team_member.Repository
	TeamMemberService team_member.Service
	TeamMemberHandler *team_member.Handler

	OneOnOneRepo    one_on_one.Repository
	OneOnOneService one_on_one.Service
	OneOnOneHandler *one_on_one.Handler

	DutyScheduleRepo    duty_schedule.Repository
	DutyScheduleService duty_schedule.Service
	DutyScheduleHandler *duty_schedule.Handler

	CalendarEventRepo    calendar_event.Repository
	CalendarEventHandler *calendar_event.Handler

	SyncService event_sync.Service
	SyncHandler *event_sync.Handler

	ConsistencyService consistency.Service
	ConsistencyHandler *consistency.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()
	deps.Clock = utils.SystemClock{}

	deps.TenantRepo = tenant.NewRepository(db)

	deps.TeamMemberRepo = team_member.NewRepository(db)
	deps.TeamMemberService = team_member.NewService(deps.TeamMemberRepo, deps.Bus)
	deps.TeamMemberHandler = team_member.NewHandler(deps.TeamMemberService)

	deps.OneOnOneRepo = one_on_one.NewRepository(db)
	deps.OneOnOneService = one_on_one.NewService(deps.OneOnOneRepo, deps.Bus)
	deps.OneOnOneHandler = one_on_one.NewHandler(deps.OneOnOneService)

	deps.DutyScheduleRepo = duty_schedule.NewRepository(db)
	deps.DutyScheduleService = duty_schedule.NewService(deps.DutyScheduleRepo, deps.Bus)
	deps.DutyScheduleHandler = duty_schedule.NewHandler(deps.DutyScheduleService)

	deps.CalendarEventRepo = calendar_event.NewRepository(db)

	deps.SyncService = event_sync.NewService(
		deps.CalendarEventRepo, deps.TeamMemberRepo, deps.OneOnOneRepo, deps.DutyScheduleRepo,
		deps.Clock, cfg.Sync.YearsBack, cfg.Sync.YearsAhead)
	deps.SyncHandler = event_sync.NewHandler(deps.SyncService)

	deps.ConsistencyService = consistency.NewService(
		deps.CalendarEventRepo, deps.TeamMemberRepo, deps.OneOnOneRepo, deps.DutyScheduleRepo,
		deps.Clock, cfg.Sync.YearsBack, cfg.Sync.YearsAhead)
	deps.ConsistencyHandler = consistency.NewHandler(deps.ConsistencyService)

	deps.CalendarEventHandler = calendar_event.NewHandler(deps.CalendarEventRepo,
		func(ctx context.Context) error {
			_, err := deps.SyncService.SynchronizeAllEvents(ctx)
			return err
		},
		deps.ConsistencyService.EnsureOneOnOneVisibility,
	)

	subscribeSync(deps.Bus, deps.SyncService)

	return deps
}

// subscribeSync wires the synchronization engine to source-entity mutations so
// every change triggers the matching scoped sync pass synchronously within the
// mutating request.
func subscribeSync(bus *event_bus.EventBus, syncService event_sync.Service) {
	event_bus.SubscribeTyped(bus, event_bus.TeamMemberCreatedEvent,
		func(e event_bus.EventT[event_bus.TeamMemberCreated]) error {
			return syncService.GenerateEventsForTeamMember(e.Context(), e.Data.Id)
		})
	event_bus.SubscribeTyped(bus, event_bus.TeamMemberUpdatedEvent,
		func(e event_bus.EventT[event_bus.TeamMemberUpdated]) error {
			return syncService.UpdateEventsForTeamMember(e.Context(), e.Data.Id)
		})
	event_bus.SubscribeTyped(bus, event_bus.TeamMemberDeletedEvent,
		func(e event_bus.EventT[event_bus.TeamMemberDeleted]) error {
			return syncService.DeleteEventsForTeamMember(e.Context(), e.Data.Id)
		})
	event_bus.SubscribeTyped(bus, event_bus.OneOnOneChangedEvent,
		func(e event_bus.EventT[event_bus.OneOnOneChanged]) error {
			_, err := syncService.SyncOneOnOneMeetings(e.Context())
			return err
		})
	event_bus.SubscribeTyped(bus, event_bus.DutyScheduleChangedEvent,
		func(e event_bus.EventT[event_bus.DutyScheduleChanged]) error {
			_, err := syncService.SyncDutySchedules(e.Context())
			return err
		})
}
