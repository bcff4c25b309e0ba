package server

import (
	"io/fs"
	"net/http"
	"slices"
)

// CacheNamePrefix prefixes the versioned client cache name.
const CacheNamePrefix = "pocket-lifts-"

// Manifest lists the static assets a client should cache for offline use.
// Caches whose name differs from CacheName are stale.
type Manifest struct {
	Version   string   `json:"version"`
	CacheName string   `json:"cache_name"`
	Assets    []string `json:"assets"`
}

type assetSet struct {
	manifest Manifest
}

func loadAssets(webFS fs.FS, version string) (*assetSet, error) {
	paths := []string{"./"}
	err := fs.WalkDir(webFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		paths = append(paths, "./"+p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths[1:])
	return &assetSet{manifest: Manifest{
		Version:   version,
		CacheName: CacheNamePrefix + version,
		Assets:    paths,
	}}, nil
}

func (s *Server) handleAssetManifest(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no frontend configured"})
		return
	}
	writeJSON(w, http.StatusOK, s.assets.manifest)
}
