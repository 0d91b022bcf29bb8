package policy

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/seanpol/ifdif/filecontext"
	"github.com/seanpol/ifdif/internal/gmltext"
	"github.com/seanpol/ifdif/permmap"
	"github.com/seanpol/ifdif/policygraph"
)

// LoadWithCache is Load, plus the db/ cache contract of spec.md §6: when
// load is true and db/file_contexts.db, db/graph.gml and db/simple.gml
// exist, they're read back instead of rebuilt; when save is true (or load
// is true and the cache doesn't exist yet), the rebuilt state is written
// back out. Mirrors the original's Policy.load_policy(load, save, count).
func LoadWithCache(path string, decoder PolicyDecoder, pm *permmap.Map, fcFiles []string, load, save bool) (*Policy, error) {
	props, err := LoadProperties(filepath.Join(path, "build.prop"))
	if err != nil {
		return nil, err
	}

	dbDir := filepath.Join(path, "db")
	fcDBPath := filepath.Join(dbDir, "file_contexts.db")
	graphPath := filepath.Join(dbDir, "graph.gml")
	simplePath := filepath.Join(dbDir, "simple.gml")

	cacheExists := fileExists(fcDBPath) && fileExists(graphPath) && fileExists(simplePath)

	var fcMap map[string]*filecontext.FileContext
	var graph, simple *policygraph.Graph
	var missing map[string]struct{}

	if load && cacheExists {
		fcMap, err = filecontext.LoadDB(fcDBPath)
		if err != nil {
			return nil, err
		}
		graph, err = readGMLFile(graphPath)
		if err != nil {
			return nil, err
		}
		simple, err = readGMLFile(simplePath)
		if err != nil {
			return nil, err
		}
		slog.Info("loaded policy from cache", "component", "policy", "path", path)
	} else {
		fcMap, err = filecontext.BuildFromFiles(fcFiles)
		if err != nil {
			return nil, err
		}

		avRules, err := decoder.AVRules()
		if err != nil {
			return nil, err
		}
		teRules, err := decoder.TERules()
		if err != nil {
			return nil, err
		}

		graph, missing = policygraph.Build(avRules, teRules, pm, fcMap)
		tagSecurityLevels(graph)
		simple = policygraph.Simplify(graph)

		slog.Info("loaded policy", "component", "policy", "path", path,
			"nodes", graph.NumNodes(), "simple_nodes", simple.NumNodes())
	}

	if save || (load && !cacheExists) {
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return nil, err
		}
		if err := filecontext.SaveDB(fcMap, fcDBPath); err != nil {
			return nil, err
		}
		if err := writeGMLFile(graphPath, graph); err != nil {
			return nil, err
		}
		if err := writeGMLFile(simplePath, simple); err != nil {
			return nil, err
		}
	}

	return &Policy{
		Path:            path,
		Properties:      props,
		FileContexts:    fcMap,
		Graph:           graph,
		SimpleGraph:     simple,
		MissingContexts: missing,
	}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readGMLFile(path string) (*policygraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return gmltext.ReadGraph(f)
}

func writeGMLFile(path string, g *policygraph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gmltext.WriteGraph(g, f)
}
