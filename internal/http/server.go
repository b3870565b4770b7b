// Package http exposes the session, expense and report operations as a
// small JSON API. It is a thin consumer of the core components: every
// handler validates primitives, calls exactly one operation and encodes
// the result.
package http

import (
	"net/http"

	"gastos/internal/log"
	"gastos/internal/report"
	"gastos/internal/services"
	"gastos/internal/session"
)

type Server struct {
	sess     *session.Session
	expenses *services.ExpenseService
	reports  *report.Builder
	logger   *log.Logger
}

// NewServer wires the routes and returns a configured *http.Server.
func NewServer(addr string, sess *session.Session, expenses *services.ExpenseService, reports *report.Builder, logger *log.Logger) *http.Server {
	s := &Server{
		sess:     sess,
		expenses: expenses,
		reports:  reports,
		logger:   logger.WithComponent("http"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/register", s.handleRegister)
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/logout", s.handleLogout)
	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/expenses/edit", s.handleEditExpense)
	mux.HandleFunc("/api/expenses/delete", s.handleDeleteExpense)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/users", s.handleUsers)
	mux.HandleFunc("/api/users/delete", s.handleDeleteUser)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &http.Server{Addr: addr, Handler: mux}
}
