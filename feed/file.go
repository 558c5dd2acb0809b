package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/encodeous/vpnv4/state"
	"github.com/goccy/go-yaml"
)

// TenantRecord is one entry of a tenants document
type TenantRecord struct {
	Namespace string   `yaml:"namespace"`
	Prefixes  []string `yaml:"prefixes"`
}

// TenantsDocument is the YAML/JSON document read by FileFeed
type TenantsDocument struct {
	Tenants *[]TenantRecord `yaml:"tenants"`
}

// ParseTenants decodes a tenants document into namespace -> normalized prefixes.
// Records without a namespace are skipped, a later record for the same namespace replaces an earlier one.
func ParseTenants(data []byte) (map[string][]string, error) {
	doc := TenantsDocument{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Tenants == nil {
		return nil, errors.New("tenants file missing 'tenants' key")
	}
	desired := make(map[string][]string, len(*doc.Tenants))
	for _, rec := range *doc.Tenants {
		if rec.Namespace == "" {
			continue
		}
		prefixes, err := state.NormalizePrefixes(rec.Prefixes)
		if err != nil {
			return nil, fmt.Errorf("namespace %s: %w", rec.Namespace, err)
		}
		desired[rec.Namespace] = prefixes
	}
	return desired, nil
}

// FileFeed polls a tenants file
type FileFeed struct {
	path     string
	pub      Publisher
	log      *slog.Logger
	snapshot map[string][]string
}

func NewFileFeed(path string, pub Publisher, log *slog.Logger) *FileFeed {
	if log == nil {
		log = slog.Default()
	}
	return &FileFeed{
		path:     path,
		pub:      pub,
		log:      log,
		snapshot: make(map[string][]string),
	}
}

func (f *FileFeed) Name() string {
	return "file:" + f.path
}

func (f *FileFeed) Poll(ctx context.Context) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.log.Debug("tenants file does not exist yet", "path", f.path)
			return nil
		}
		return err
	}
	desired, err := ParseTenants(data)
	if err != nil {
		return fmt.Errorf("invalid tenants file %s: %w", f.path, err)
	}

	for _, ns := range slices.Sorted(maps.Keys(desired)) {
		if err = ctx.Err(); err != nil {
			return err
		}
		prefixes := desired[ns]
		if cur, ok := f.snapshot[ns]; ok && slices.Equal(cur, prefixes) {
			continue
		}
		f.log.Debug("namespace updated", "namespace", ns, "prefixes", prefixes)
		if err = f.pub.Publish(state.NamespaceUpsert{Namespace: ns, Prefixes: prefixes}); err != nil {
			return err
		}
	}
	for _, ns := range slices.Sorted(maps.Keys(f.snapshot)) {
		if _, ok := desired[ns]; ok {
			continue
		}
		f.log.Debug("namespace removed", "namespace", ns)
		if err = f.pub.Publish(state.NamespaceDelete{Namespace: ns}); err != nil {
			return err
		}
	}
	f.snapshot = desired
	return nil
}
