package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// WriteDuplicatesExport writes duplicate or similarity findings to a
// file as json or csv. Nothing is written when there are no groups.
func WriteDuplicatesExport(groups []models.DuplicateGroup, path, format string) error {
	if len(groups) == 0 {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	switch format {
	case "csv":
		return exportDuplicatesCSV(groups, file)
	case "", "json":
		return exportDuplicatesJSON(groups, file)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// exportDuplicatesJSON writes groups as one JSON document.
func exportDuplicatesJSON(groups []models.DuplicateGroup, w io.Writer) error {
	type exportGroup struct {
		Hash        string   `json:"hash"`
		Count       int      `json:"count"`
		Size        int64    `json:"size"`
		WastedSpace int64    `json:"wasted_space"`
		Files       []string `json:"files"`
		Distances   []int    `json:"distances,omitempty"`
	}
	out := struct {
		Generated   string        `json:"generated"`
		TotalGroups int           `json:"total_groups"`
		TotalWasted int64         `json:"total_wasted"`
		Groups      []exportGroup `json:"groups"`
	}{
		Generated:   time.Now().Format(time.RFC3339),
		TotalGroups: len(groups),
	}
	for i := range groups {
		g := &groups[i]
		out.TotalWasted += g.WastedSpace()
		out.Groups = append(out.Groups, exportGroup{
			Hash:        g.Hash,
			Count:       len(g.Files),
			Size:        g.Size,
			WastedSpace: g.WastedSpace(),
			Files:       g.Files,
			Distances:   g.Distances,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// exportDuplicatesCSV writes one row per group member.
func exportDuplicatesCSV(groups []models.DuplicateGroup, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"group", "hash", "path", "size", "canonical"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range groups {
		g := &groups[i]
		for j, path := range g.Files {
			row := []string{
				strconv.Itoa(i + 1),
				g.Hash,
				path,
				strconv.FormatInt(g.Size, 10),
				strconv.FormatBool(j == 0),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStatsExport writes aggregated tree statistics to a JSON file.
func WriteStatsExport(stats *models.TreeStats, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	formatter := NewJSONFormatter(file)
	return formatter.Stats(stats)
}
