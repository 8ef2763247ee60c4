package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/xid"

	"vaultfire/internal/insight"
	"vaultfire/internal/storage"
)

const certificateRecent = 3

// Anchors are the identity handles a certificate is issued against. They are
// copied verbatim and never verified.
type Anchors struct {
	ENS           string
	CBID          string
	BiometricHash string
}

// Certificate is a belief certificate: a snapshot of a user's recent
// reflections and reward state. Signature is a content digest, not a
// cryptographic signature.
type Certificate struct {
	ID                string   `json:"id"`
	Timestamp         string   `json:"timestamp"`
	User              string   `json:"user"`
	ENS               string   `json:"ens"`
	CBID              string   `json:"cb_id"`
	BiometricHash     string   `json:"biometric_hash,omitempty"`
	IntegrityScore    int      `json:"integrity_score"`
	IntegrityLevel    string   `json:"integrity_level"`
	RecentReflections []string `json:"recent_reflections"`
	RewardSignal      string   `json:"reward_signal"`
	TraitsSummary     []string `json:"traits_summary"`
	VaultfireOutput   float64  `json:"vaultfire_output"`
	XP                int      `json:"xp"`
	Rank              string   `json:"rank"`
	Signature         string   `json:"signature"`
}

// IntegrityLevel buckets an integrity score.
func IntegrityLevel(score int) string {
	switch {
	case score > 6:
		return "legendary"
	case score > 3:
		return "high"
	case score > 0:
		return "medium"
	default:
		return "low"
	}
}

func (s *Service) GenerateCertificate(ctx context.Context, user string, anchors Anchors, now time.Time) (*Certificate, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(anchors.ENS) == "" {
		return nil, ValidationError{Field: "ens", Message: "is required"}
	}
	if strings.TrimSpace(anchors.CBID) == "" {
		return nil, ValidationError{Field: "cb_id", Message: "is required"}
	}

	refs, err := s.reflections.ByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	rec, err := s.users.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	sig, err := s.signals.Get(ctx, user)
	if err != nil {
		return nil, err
	}

	cert := &Certificate{
		ID:                xid.NewWithTime(now).String(),
		Timestamp:         now.UTC().Format(time.RFC3339),
		User:              user,
		ENS:               anchors.ENS,
		CBID:              anchors.CBID,
		BiometricHash:     anchors.BiometricHash,
		RecentReflections: []string{},
	}

	traits := map[string]bool{}
	total := 0
	for i, r := range refs {
		a := s.analyzer.Analyze(r.Content)
		total += a.Score
		for _, t := range a.Traits {
			traits[t] = true
		}
		if i >= len(refs)-certificateRecent {
			cert.IntegrityScore += a.Score
			cert.RecentReflections = append(cert.RecentReflections, r.Content)
		}
	}
	cert.IntegrityLevel = IntegrityLevel(cert.IntegrityScore)
	cert.TraitsSummary = make([]string, 0, len(traits))
	for t := range traits {
		cert.TraitsSummary = append(cert.TraitsSummary, t)
	}
	sort.Strings(cert.TraitsSummary)
	cert.VaultfireOutput = s.yield.SimulateYield(total, len(refs))

	if rec != nil {
		cert.XP = rec.XP
	}
	cert.Rank = RankOf(cert.XP).Label
	if sig != nil {
		cert.RewardSignal = fmt.Sprintf("x%.2f yield %.2f", sig.RewardMultiplier, sig.Yield)
		if sig.Growth != "" {
			cert.RewardSignal += " (" + sig.Growth + ")"
		}
	}

	digest, err := certificateDigest(cert)
	if err != nil {
		return nil, err
	}
	cert.Signature = digest
	return cert, nil
}

// VerifyCertificate recomputes the digest and compares it to Signature.
func VerifyCertificate(cert *Certificate) bool {
	digest, err := certificateDigest(cert)
	return err == nil && digest == cert.Signature
}

func certificateDigest(cert *Certificate) (string, error) {
	body := *cert
	body.Signature = ""
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("certificate digest: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// ExportCertificate writes cert as belief_certificate_<timestamp>.json under
// dir and returns the path.
func ExportCertificate(dir string, cert *Certificate) (string, error) {
	b, err := json.MarshalIndent(cert, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export certificate: %w", err)
	}
	name := "belief_certificate_" + strings.ReplaceAll(cert.Timestamp, ":", "-") + ".json"
	path := filepath.Join(dir, name)
	if err := storage.WriteFileAtomic(path, b); err != nil {
		return "", fmt.Errorf("export certificate: %w", err)
	}
	return path, nil
}

// IntegrityOf sums the scores of analyses.
func IntegrityOf(analyses []insight.Analysis) int {
	total := 0
	for _, a := range analyses {
		total += a.Score
	}
	return total
}
