package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Weapon represents one weapon's static attributes loaded from a weapon_<id>.json file
type Weapon struct {
	ID       string
	Filename string
	Name     string
	Damage   *Damage
	Recoil   *Recoil

	// Fields holds every top-level field of the source document verbatim
	Fields map[string]json.RawMessage
}

// Damage holds per-hit-zone damage values
type Damage struct {
	Head  *float64 `json:"head,omitempty"`
	Chest *float64 `json:"chest,omitempty"`
}

// Recoil holds recoil values
type Recoil struct {
	Vertical *float64 `json:"vertical,omitempty"`
}

// MarshalJSON emits {id, filename} merged with the source document fields.
// Document fields win on collision.
func (w Weapon) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(w.Fields)+5)
	out["id"] = w.ID
	out["filename"] = w.Filename
	if w.Name != "" {
		out["name"] = w.Name
	}
	if w.Damage != nil {
		out["damage"] = w.Damage
	}
	if w.Recoil != nil {
		out["recoil"] = w.Recoil
	}

	for k, v := range w.Fields {
		out[k] = v
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes a weapon document. The document must be a JSON object.
// A string "id" or "filename" in the document overrides the current value.
func (w *Weapon) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("weapon document must be a JSON object")
	}

	w.Fields = fields

	if id, ok := stringField(fields, "id"); ok {
		w.ID = id
	}
	if filename, ok := stringField(fields, "filename"); ok {
		w.Filename = filename
	}
	w.Name, _ = stringField(fields, "name")

	w.Damage = nil
	if obj := objectField(fields, "damage"); obj != nil {
		w.Damage = &Damage{
			Head:  numberField(obj, "head"),
			Chest: numberField(obj, "chest"),
		}
	}

	w.Recoil = nil
	if obj := objectField(fields, "recoil"); obj != nil {
		w.Recoil = &Recoil{
			Vertical: numberField(obj, "vertical"),
		}
	}

	return nil
}

// HeadDamage returns damage.head when present
func (w *Weapon) HeadDamage() (float64, bool) {
	if w.Damage == nil || w.Damage.Head == nil {
		return 0, false
	}
	return *w.Damage.Head, true
}

// VerticalRecoil returns recoil.vertical when present
func (w *Weapon) VerticalRecoil() (float64, bool) {
	if w.Recoil == nil || w.Recoil.Vertical == nil {
		return 0, false
	}
	return *w.Recoil.Vertical, true
}

// DamageEfficiency returns the mean of head and chest damage divided by
// vertical recoil, rounded to one decimal place. A missing or zero vertical
// recoil counts as 1. Reports false when damage or recoil is missing.
func (w *Weapon) DamageEfficiency() (float64, bool) {
	if w.Damage == nil || w.Recoil == nil {
		return 0, false
	}
	if w.Damage.Head == nil || w.Damage.Chest == nil {
		return 0, false
	}

	avgDamage := (*w.Damage.Head + *w.Damage.Chest) / 2
	penalty := 1.0
	if v, ok := w.VerticalRecoil(); ok && v != 0 {
		penalty = v
	}

	return RoundTo(avgDamage/penalty, 1), true
}

// RoundHalfUp rounds to the nearest integer with halves rounded toward +Inf
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// RoundTo rounds v to the given number of decimal places, halves toward +Inf
func RoundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return RoundHalfUp(v*scale) / scale
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	// null decodes into a string without error
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func objectField(fields map[string]json.RawMessage, key string) map[string]json.RawMessage {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func numberField(fields map[string]json.RawMessage, key string) *float64 {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var n *float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return n
}
