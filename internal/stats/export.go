package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mpower/youthopia/internal/model"
)

// ExportFilename is the download name of the student export.
const ExportFilename = "student_database.csv"

var exportHeader = []string{"ID", "Name", "School", "Class", "Stream", "Bonus"}

// ExportStudents writes one CSV row per student. The ID column carries the
// student's email, and Bonus the point balance.
func ExportStudents(w io.Writer, users []model.User) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for i := range users {
		u := &users[i]
		if !u.IsStudent() {
			continue
		}
		row := []string{u.Email, u.Name, u.Institute, u.Class, u.Stream, strconv.Itoa(u.Points)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
