package export

import (
	"encoding/csv"
	"io"

	"github.com/dmitrijs2005/applylog/internal/server/models"
)

func renderCSV(w io.Writer, jobs []models.Job) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, j := range jobs {
		if err := cw.Write(record(j)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
