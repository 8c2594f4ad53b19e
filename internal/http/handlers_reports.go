package http

import (
	"net/http"
	"strings"

	"saldo/internal/core"
)

func (s *Server) handleAllBalances(w http.ResponseWriter, r *http.Request) {
	rows, err := s.engine.AllBalances(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountBalances(rows))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := s.engine.Balance(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{AccountID: id, Balance: num(balance)})
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	points, err := s.engine.Timeseries(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeseries(points))
}

func (s *Server) handleIncomeExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	split, err := s.engine.IncomeExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, incomeExpenseResponse{Income: num(split.Income), Expense: num(split.Expense)})
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	accountID, err := queryInt(r, "account_id", 0, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, err := queryInt(r, "year", 0, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	month, err := queryInt(r, "month", 0, true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rep, err := s.engine.MonthlyReport(r.Context(), accountID, int(year), int(month))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthlyReport(rep))
}

// handleChartData aggregates by category; tx_type defaults to expense.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	accountID, err := queryInt(r, "account_id", 0, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	raw := r.URL.Query().Get("tx_type")
	if strings.TrimSpace(raw) == "" {
		raw = string(core.KindExpense)
	}
	kind, err := core.ParseKind(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := s.engine.ChartData(r.Context(), accountID, kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChart(rows))
}
