package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Team members
	r.HandleFunc("/api/member", deps.TeamMemberHandler.ListMembers).Methods("GET")
	r.HandleFunc("/api/member", deps.TeamMemberHandler.CreateMember).Methods("POST")
	r.HandleFunc("/api/member/{memberId}", deps.TeamMemberHandler.GetMember).Methods("GET")
	r.HandleFunc("/api/member/{memberId}", deps.TeamMemberHandler.UpdateMember).Methods("PUT")
	r.HandleFunc("/api/member/{memberId}", deps.TeamMemberHandler.DeleteMember).Methods("DELETE")

	// One-on-ones
	r.HandleFunc("/api/one-on-one", deps.OneOnOneHandler.ListOneOnOnes).Methods("GET")
	r.HandleFunc("/api/one-on-one", deps.OneOnOneHandler.CreateOneOnOne).Methods("POST")
	r.HandleFunc("/api/one-on-one/{oneOnOneId}", deps.OneOnOneHandler.UpdateOneOnOne).Methods("PUT")
	r.HandleFunc("/api/one-on-one/{oneOnOneId}", deps.OneOnOneHandler.DeleteOneOnOne).Methods("DELETE")

	// Duty schedules
	r.HandleFunc("/api/duty-schedule", deps.DutyScheduleHandler.ListSchedules).Methods("GET")
	r.HandleFunc("/api/duty-schedule", deps.DutyScheduleHandler.CreateSchedule).Methods("POST")
	r.HandleFunc("/api/duty-schedule/{scheduleId}", deps.DutyScheduleHandler.UpdateSchedule).Methods("PUT")
	r.HandleFunc("/api/duty-schedule/{scheduleId}", deps.DutyScheduleHandler.DeleteSchedule).Methods("DELETE")

	// Calendar page
	r.HandleFunc("/api/calendar/event", deps.CalendarEventHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.CalendarEventHandler.EditEvent).Methods("PATCH")

	// Synchronization
	r.HandleFunc("/api/sync", deps.SyncHandler.Synchronize).Methods("POST")
	r.HandleFunc("/api/sync/one-on-one", deps.SyncHandler.SynchronizeOneOnOnes).Methods("POST")

	// Maintenance
	r.HandleFunc("/api/consistency/validate", deps.ConsistencyHandler.Validate).Methods("GET")
	r.HandleFunc("/api/consistency/repair", deps.ConsistencyHandler.Repair).Methods("POST")
	r.HandleFunc("/api/consistency/one-on-one-visibility", deps.ConsistencyHandler.EnsureVisibility).Methods("POST")
}
