package export

import (
	"encoding/json"
	"io"

	"github.com/dmitrijs2005/applylog/internal/server/models"
)

type jsonRow struct {
	Title          string   `json:"job_title"`
	Company        string   `json:"company"`
	DateApplied    string   `json:"date_applied"`
	Status         string   `json:"status"`
	Location       string   `json:"location"`
	Salary         string   `json:"salary"`
	JobLink        string   `json:"job_link"`
	Platforms      []string `json:"application_platforms"`
	NextActionDate string   `json:"next_action_date"`
	Notes          string   `json:"notes"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

func renderJSON(w io.Writer, jobs []models.Job) error {
	rows := make([]jsonRow, 0, len(jobs))
	for _, j := range jobs {
		r := record(j)
		platforms := j.Platforms
		if platforms == nil {
			platforms = []string{}
		}
		rows = append(rows, jsonRow{
			Title:          r[0],
			Company:        r[1],
			DateApplied:    r[2],
			Status:         r[3],
			Location:       r[4],
			Salary:         r[5],
			JobLink:        r[6],
			Platforms:      platforms,
			NextActionDate: r[8],
			Notes:          r[9],
			CreatedAt:      r[10],
			UpdatedAt:      r[11],
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
