package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVRenderer writes one category,term,count record per entry. Each
// category block opens with a "# Top N of <category>" comment and closes
// with a "#" sentinel followed by a blank line.
type CSVRenderer struct{}

// Render implements Renderer.
func (CSVRenderer) Render(w io.Writer, rep Report) error {
	for _, sec := range rep.Sections {
		if _, err := fmt.Fprintf(w, "# Top %s of %s\n", limitLabel(rep.Limit), sec.Category); err != nil {
			return err
		}

		cw := csv.NewWriter(w)
		for _, e := range sec.Entries {
			if err := cw.Write([]string{string(sec.Category), e.Term, strconv.FormatInt(e.Count, 10)}); err != nil {
				return err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "#\n\n"); err != nil {
			return err
		}
	}
	return nil
}
