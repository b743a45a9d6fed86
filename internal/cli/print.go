package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/inovacc/starcards/internal/model"
)

// PrintEntities writes the entity sequence to w. Styled output renders one
// card per entity; plain output is tab separated for scripts.
func PrintEntities(w io.Writer, snap model.Snapshot, styled bool) error {
	if styled {
		return printCards(w, snap)
	}

	return printTable(w, snap)
}

func printCards(w io.Writer, snap model.Snapshot) error {
	var b strings.Builder

	b.WriteString(boldStyle.Render(fmt.Sprintf("Star Wars %s", snap.Category)))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" (%d)", len(snap.Entities))))
	b.WriteString("\n\n")

	for i, e := range snap.Entities {
		star := ""
		if snap.IsFavorite(e.Name) {
			star = " " + favoriteStyle.Render("★")
		}

		b.WriteString(dimStyle.Render(fmt.Sprintf("%3d ", i)))
		b.WriteString(colorStyle(e.Color).Render(e.Name) + star + "\n")

		for _, a := range e.Summary() {
			b.WriteString("    " + labelStyle.Render(a.Label) + " " + a.Value + "\n")
		}

		b.WriteString("    " + dimStyle.Render(e.Category.DetailPath(i)) + "\n\n")
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func printTable(w io.Writer, snap model.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fields := snap.Category.SummaryFields()

	header := []string{"INDEX", "NAME"}
	for _, f := range fields {
		header = append(header, strings.ToUpper(f))
	}

	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))

	for i, e := range snap.Entities {
		row := []string{fmt.Sprint(i), e.Name}
		for _, f := range fields {
			row = append(row, e.Attr(f))
		}

		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// PrintFavorites writes the favorites as a tab separated table.
func PrintFavorites(w io.Writer, favorites []model.Favorite) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "ID\tNAME\tTAG\tADDED")

	for _, f := range favorites {
		added := ""
		if !f.CreatedAt.IsZero() {
			added = f.CreatedAt.Format("2006-01-02 15:04")
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Name, f.Category, added)
	}

	return tw.Flush()
}
