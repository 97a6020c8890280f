package schema

// DeriveFromHeader builds the line definition for a CSV stream whose first line names the
// columns. The receiver is the master definition and is left untouched.
//
// Header columns that name a master cell take that cell's definition and unknown names become
// plain text cells. Blank names become placeholders that are skipped on read; when the master
// cell at the same position is unnamed, the placeholder keeps its default.
// Master cells with a default value that the header does not name are appended, skipped on
// read, so that their defaults always apply. The names of mandatory master cells missing
// from the header are returned in master order.
func (l Line) DeriveFromHeader(header []string) (derived Line, missingMandatory []string) {
	derived = l
	derived.HeaderAsSchema = false
	derived.Cells = make([]Cell, 0, len(header)+len(l.Cells))

	named := make(map[string]bool, len(header))
	for i, h := range header {
		switch master, ok := l.CellByName(h); {
		case h == "" && i < len(l.Cells) && l.Cells[i].Name == "":
			c := l.Cells[i].Clone()
			c.IgnoreRead = true
			derived.Cells = append(derived.Cells, c)
		case h == "":
			derived.Cells = append(derived.Cells, Cell{IgnoreRead: true})
		case ok:
			derived.Cells = append(derived.Cells, master.Clone())
		default:
			derived.Cells = append(derived.Cells, Cell{Name: h})
		}
		if h != "" {
			named[h] = true
		}
	}

	for i := range l.Cells {
		master := &l.Cells[i]
		if master.Name == "" || named[master.Name] {
			continue
		}
		if master.HasDefault() {
			c := master.Clone()
			c.IgnoreRead = true
			derived.Cells = append(derived.Cells, c)
			continue
		}
		if master.Mandatory {
			missingMandatory = append(missingMandatory, master.Name)
		}
	}
	return derived, missingMandatory
}
