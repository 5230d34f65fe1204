package site

import (
	"encoding/json"

	"git.home.luguber.info/inful/pagesmith/internal/frontmatterops"
)

// ManifestFile is written at the output root and lists what produced each route.
const ManifestFile = ".pagesmith-manifest.json"

// Manifest records the source and content fingerprint of every route. It
// holds no timestamps so identical input yields an identical manifest.
type Manifest struct {
	Version int             `json:"version"`
	Routes  []ManifestEntry `json:"routes"`
}

// ManifestEntry describes one route.
type ManifestEntry struct {
	Route       string `json:"route"`
	File        string `json:"file"`
	Layout      string `json:"layout"`
	Source      string `json:"source,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Manifest builds the manifest for the assembled site.
func (s *Site) Manifest() (*Manifest, error) {
	m := &Manifest{Version: 1, Routes: make([]ManifestEntry, 0, len(s.Routes))}
	for _, r := range s.Routes {
		entry := ManifestEntry{Route: r.Path, File: r.File(), Layout: r.Layout}
		if r.Entry != nil {
			doc := r.Entry.Doc
			fp, err := frontmatterops.ComputeFingerprint(doc.Fields, doc.Body)
			if err != nil {
				return nil, err
			}
			entry.Source = doc.SourcePath
			entry.Fingerprint = fp
			entry.Status = doc.Status.String()
		}
		m.Routes = append(m.Routes, entry)
	}
	return m, nil
}

// Encode returns the indented JSON form written to disk.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
