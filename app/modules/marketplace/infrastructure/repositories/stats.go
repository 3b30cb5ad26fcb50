package marketplacedb

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// StatsDocument is the raw JSON of the per-user stats column. Each module
// owns one top-level key and reads or writes only that key, so keys written
// by other modules survive.
type StatsDocument []byte

// Stats document keys.
const (
	StatsKeyTrustScore      = "trustScore"
	StatsKeyReferralRewards = "referralRewards"
	StatsKeyReviewStreak    = "reviewStreak"
)

var emptyDocument = []byte("{}")

func (d StatsDocument) raw() []byte {
	if len(d) == 0 {
		return emptyDocument
	}
	return d
}

// Value implements driver.Valuer.
func (d StatsDocument) Value() (driver.Value, error) {
	return string(d.raw()), nil
}

// Scan implements sql.Scanner.
func (d *StatsDocument) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = StatsDocument(emptyDocument)
	case []byte:
		*d = append(StatsDocument(nil), v...)
	case string:
		*d = StatsDocument(v)
	default:
		return fmt.Errorf("stats document: unsupported source type %T", src)
	}
	return nil
}

// Get reads a gjson path.
func (d StatsDocument) Get(path string) gjson.Result {
	return gjson.GetBytes(d.raw(), path)
}

// Decode unmarshals the value at key into dst. It reports false when the key
// is absent.
func (d StatsDocument) Decode(key string, dst any) (bool, error) {
	r := d.Get(key)
	if !r.Exists() {
		return false, nil
	}
	if err := json.Unmarshal([]byte(r.Raw), dst); err != nil {
		return true, fmt.Errorf("failed to decode stats key %s: %w", key, err)
	}
	return true, nil
}

// With returns a copy of the document with key set to value.
func (d StatsDocument) With(key string, value any) (StatsDocument, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stats key %s: %w", key, err)
	}
	out, err := sjson.SetRawBytes(append([]byte(nil), d.raw()...), key, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to set stats key %s: %w", key, err)
	}
	return StatsDocument(out), nil
}
