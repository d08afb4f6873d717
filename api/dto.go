/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures decoupling the engine's domain types from the API
  contract. Monetary values are serialized as decimal strings; clients
  format them, the engine never rounds them.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/atlas/coverage-engine/attribution"
	"github.com/atlas/coverage-engine/schedule"
)

// SessionDTO describes the loaded session.
type SessionDTO struct {
	ID           string   `json:"id"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	People       []string `json:"people"`
	Transactions int      `json:"transactions"`
}

// GridRowDTO is one (date, hour) row of grid state.
type GridRowDTO struct {
	Date   string   `json:"date"`
	Hour   int      `json:"hour"`
	States []string `json:"states"` // indexed by person ordinal
}

// EditCellRequest is one operator edit.
type EditCellRequest struct {
	Date   string `json:"date"`
	Hour   int    `json:"hour"`
	Person string `json:"person"`
	State  string `json:"state"` // "eligible" or "on_break"
}

// HourlyRowDTO is one row of the coverage matrix.
type HourlyRowDTO struct {
	Date       string         `json:"date"`
	Label      string         `json:"label"`
	Cells      []HourCellDTO  `json:"cells"`
	Unassigned string         `json:"unassigned"`
}

type HourCellDTO struct {
	State   string `json:"state"`
	Display string `json:"display"`
	Amount  string `json:"amount"`
}

type DailyRowDTO struct {
	Date       string   `json:"date"`
	Amounts    []string `json:"amounts"`
	Unassigned string   `json:"unassigned"`
}

type PersonTotalDTO struct {
	Person     string `json:"person"`
	Total      string `json:"total"`
	WorkedDays int    `json:"worked_days"`
	Commission string `json:"commission"`
}

type ConcurrencyDTO struct {
	Person   string `json:"person"`
	Alone    int    `json:"alone"`
	WithOne  int    `json:"with_one"`
	WithMany int    `json:"with_many"`
}

type CategoryTotalDTO struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

// ReportDTO is the full result set of one recomputation.
type ReportDTO struct {
	People      []string           `json:"people"`
	From        string             `json:"from"`
	To          string             `json:"to"`
	Hourly      []HourlyRowDTO     `json:"hourly"`
	Daily       []DailyRowDTO      `json:"daily"`
	Totals      []PersonTotalDTO   `json:"totals"`
	Concurrency []ConcurrencyDTO   `json:"concurrency"`
	Categories  []CategoryTotalDTO `json:"categories"`
	Unassigned  string             `json:"unassigned"`
	GrandTotal  string             `json:"grand_total"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toReportDTO(r *attribution.Report) ReportDTO {
	dto := ReportDTO{
		From:       r.Window.From.String(),
		To:         r.Window.To.String(),
		Unassigned: r.Unassigned.String(),
		GrandTotal: r.GrandTotal.String(),
	}
	for _, p := range r.People {
		dto.People = append(dto.People, p.Name)
	}
	for _, row := range r.Hourly {
		h := HourlyRowDTO{
			Date:       row.Slot.Date.String(),
			Label:      row.Label,
			Unassigned: row.Unassigned.String(),
		}
		for _, c := range row.Cells {
			h.Cells = append(h.Cells, HourCellDTO{
				State:   c.State.String(),
				Display: c.Display,
				Amount:  c.Amount.String(),
			})
		}
		dto.Hourly = append(dto.Hourly, h)
	}
	for _, row := range r.Daily {
		d := DailyRowDTO{Date: row.Date.String(), Unassigned: row.Unassigned.String()}
		for _, a := range row.Amounts {
			d.Amounts = append(d.Amounts, a.String())
		}
		dto.Daily = append(dto.Daily, d)
	}
	for _, t := range r.Totals {
		dto.Totals = append(dto.Totals, PersonTotalDTO{
			Person:     t.Person.Name,
			Total:      t.Total.String(),
			WorkedDays: t.WorkedDays,
			Commission: t.Commission.String(),
		})
	}
	for _, c := range r.Concurrency {
		dto.Concurrency = append(dto.Concurrency, ConcurrencyDTO{
			Person:   c.Person.Name,
			Alone:    c.Alone,
			WithOne:  c.WithOne,
			WithMany: c.WithMany,
		})
	}
	for _, c := range r.Categories {
		dto.Categories = append(dto.Categories, CategoryTotalDTO{Category: c.Category, Total: c.Total.String()})
	}
	return dto
}

func toGridRowDTOs(rows []attribution.GridRow) []GridRowDTO {
	out := make([]GridRowDTO, 0, len(rows))
	for _, row := range rows {
		dto := GridRowDTO{Date: row.Date.String(), Hour: row.Hour}
		for _, s := range row.States {
			dto.States = append(dto.States, s.String())
		}
		out = append(out, dto)
	}
	return out
}

func parseSlotState(s string) (schedule.SlotState, bool) {
	switch s {
	case "eligible":
		return schedule.SlotEligible, true
	case "on_break":
		return schedule.SlotOnBreak, true
	default:
		return schedule.SlotAbsent, false
	}
}
