package main

import (
	"encoding/json"
	"io"

	"elatprep/internal/history"
)

// historyListing is the document printed by `history list --json`.
type historyListing struct {
	Ledger string        `json:"ledger"`
	Count  int           `json:"count"`
	Runs   []history.Run `json:"runs"`
}

func newHistoryListing(store *history.Store, runs []history.Run) historyListing {
	if runs == nil {
		runs = []history.Run{}
	}
	return historyListing{Ledger: store.Path(), Count: len(runs), Runs: runs}
}

// writeJSON prints v indented. Display names and paths keep <, > and & as is.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
