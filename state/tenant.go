package state

import (
	"fmt"
	"slices"
)

// Allocation represents the RD/RT values assigned to a namespace
type Allocation struct {
	Identifier uint16
	RD         string
	ImportRT   string
	ExportRT   string
}

func (a Allocation) String() string {
	return fmt.Sprintf("id=%d rd=%s import=%s export=%s", a.Identifier, a.RD, a.ImportRT, a.ExportRT)
}

// VRFDefinition is a tenant VRF exported via vpnv4. It must not be modified once built.
type VRFDefinition struct {
	Name       string
	RD         string
	ImportRTs  []string
	ExportRTs  []string
	Identifier uint16
}

func NewVRFDefinition(name string, alloc Allocation) VRFDefinition {
	return VRFDefinition{
		Name:       name,
		RD:         alloc.RD,
		ImportRTs:  []string{alloc.ImportRT},
		ExportRTs:  []string{alloc.ExportRT},
		Identifier: alloc.Identifier,
	}
}

// AllRouteTargets returns the union of import and export RTs, de-duplicated in order
func (v VRFDefinition) AllRouteTargets() []string {
	return UniqueStrings(append(slices.Clone(v.ImportRTs), v.ExportRTs...))
}

// TenantContext is the runtime data of a tenant namespace
type TenantContext struct {
	Namespace          string
	VRF                VRFDefinition
	AdvertisedPrefixes []string
}

// AddPrefixes appends the prefixes that are not advertised yet, keeping first-seen order
func (t *TenantContext) AddPrefixes(prefixes []string) {
	for _, p := range prefixes {
		if !slices.Contains(t.AdvertisedPrefixes, p) {
			t.AdvertisedPrefixes = append(t.AdvertisedPrefixes, p)
		}
	}
}

// WithdrawPrefixes removes the listed prefixes, absent entries are ignored
func (t *TenantContext) WithdrawPrefixes(prefixes []string) {
	t.AdvertisedPrefixes = slices.DeleteFunc(t.AdvertisedPrefixes, func(p string) bool {
		return slices.Contains(prefixes, p)
	})
}

// SetPrefixes replaces the advertised prefixes with the de-duplicated desired list
func (t *TenantContext) SetPrefixes(desired []string) {
	t.AdvertisedPrefixes = UniqueStrings(desired)
}

func (t *TenantContext) Clone() TenantContext {
	c := *t
	c.VRF.ImportRTs = slices.Clone(t.VRF.ImportRTs)
	c.VRF.ExportRTs = slices.Clone(t.VRF.ExportRTs)
	c.AdvertisedPrefixes = slices.Clone(t.AdvertisedPrefixes)
	return c
}

// UniqueStrings de-duplicates s, preserving the first occurrence of each element.
// The result never aliases s.
func UniqueStrings(s []string) []string {
	seen := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
