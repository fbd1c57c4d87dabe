// Command replica_compare fetches the same timetables from two API
// instances that share a Redis store and reports any divergence. With
// pub/sub session invalidation both instances should serve identical
// grids; a DIFF here means an instance is holding a stale session.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Semester string `json:"semester"`
	Branch   string `json:"branch"`
	Batch    string `json:"batch"`
	Type     string `json:"type"`
}

func (t target) path(prefix string) string {
	return fmt.Sprintf("%s/timetables/%s/%s/%s/%s", prefix, t.Semester, t.Branch, t.Batch, t.Type)
}

func (t target) label() string {
	return fmt.Sprintf("%s-%s-%s-%s", t.Semester, t.Branch, t.Batch, t.Type)
}

type config struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target          target
	PrimaryStatus   int
	ReplicaStatus   int
	StatusMatch     bool
	GridMatch       bool
	Error           error
	DurationPrimary time.Duration
	DurationReplica time.Duration
}

// volatileFields are per-instance and excluded from the diff.
var volatileFields = map[string]struct{}{
	"saved_at": {},
	"can_undo": {},
	"can_redo": {},
	"phase":    {},
}

func main() {
	var (
		primaryBase string
		replicaBase string
		apiPrefix   string
		token       string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&primaryBase, "primary", "http://localhost:8080", "primary API base URL")
	flag.StringVar(&replicaBase, "replica", "http://localhost:8081", "replica API base URL")
	flag.StringVar(&apiPrefix, "prefix", "/api/v1", "API route prefix")
	flag.StringVar(&token, "token", os.Getenv("REPLICA_COMPARE_TOKEN"), "bearer token for authenticated endpoints")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "replica_compare", "targets.json"), "path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		comparisons []comparison
		diverged    int
	)

	for _, t := range targets {
		comp := compareTarget(client, primaryBase, replicaBase, apiPrefix, token, t)
		if comp.Error != nil || !comp.StatusMatch || !comp.GridMatch {
			diverged++
		}
		comparisons = append(comparisons, comp)
	}

	printReport(comparisons)

	fmt.Printf("Diverged timetables: %d of %d\n", diverged, len(comparisons))
	if diverged > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func compareTarget(client *http.Client, primaryBase, replicaBase, prefix, token string, tgt target) comparison {
	comp := comparison{Target: tgt}

	primaryBody, primaryStatus, primaryDur, err := fetch(client, primaryBase, prefix, token, tgt)
	comp.DurationPrimary = primaryDur
	if err != nil {
		comp.Error = fmt.Errorf("primary request failed: %w", err)
		return comp
	}

	replicaBody, replicaStatus, replicaDur, err := fetch(client, replicaBase, prefix, token, tgt)
	comp.DurationReplica = replicaDur
	if err != nil {
		comp.Error = fmt.Errorf("replica request failed: %w", err)
		return comp
	}

	comp.PrimaryStatus = primaryStatus
	comp.ReplicaStatus = replicaStatus
	comp.StatusMatch = primaryStatus == replicaStatus
	comp.GridMatch = bodiesEqual(primaryBody, replicaBody)
	return comp
}

func fetch(client *http.Client, base, prefix, token string, tgt target) ([]byte, int, time.Duration, error) {
	url := strings.TrimRight(base, "/") + tgt.path(prefix)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, err
	}
	return body, resp.StatusCode, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k := range volatileFields {
			delete(val, k)
		}
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func printReport(results []comparison) {
	fmt.Println("Replica Compare Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.GridMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s\n", status, res.Target.label())
		fmt.Printf("  Primary: %d (%s)\n", res.PrimaryStatus, res.DurationPrimary)
		fmt.Printf("  Replica: %d (%s)\n", res.ReplicaStatus, res.DurationReplica)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status match: %t | Grid match: %t\n", res.StatusMatch, res.GridMatch)
		}
	}
}
