package ctrladmin

import (
	"net/http"

	"github.com/charmbracelet/log"

	"go.senan.xyz/ams/artistcsv"
)

func (c *Controller) ServeExportArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := c.DB.AllArtists()
	if err != nil {
		log.Error("listing artists for export", "err", err)
		http.Error(w, "error listing artists", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="artists.csv"`)
	if err := artistcsv.Export(w, artists); err != nil {
		log.Error("writing artist export", "err", err)
	}
}
