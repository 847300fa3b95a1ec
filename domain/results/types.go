// Package results models the estimator's response and projects it into
// user-facing labeled rows for display and export.
package results

import (
	"encoding/json"
	"fmt"
)

// CI is a [lower, upper] confidence interval
type CI [2]float64

// OptionalCI is a confidence interval the estimator may report as "NA"
type OptionalCI struct {
	Valid bool
	Value CI
}

func (c *OptionalCI) UnmarshalJSON(data []byte) error {
	if isNA(data) {
		*c = OptionalCI{}
		return nil
	}
	var value CI
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("confidence interval: %w", err)
	}
	*c = OptionalCI{Valid: true, Value: value}
	return nil
}

func (c OptionalCI) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte(`"NA"`), nil
	}
	return json.Marshal(c.Value)
}

// OptionalFloat is a numeric statistic the estimator may report as "NA"
type OptionalFloat struct {
	Valid bool
	Value float64
}

func (f *OptionalFloat) UnmarshalJSON(data []byte) error {
	if isNA(data) {
		*f = OptionalFloat{}
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("statistic: %w", err)
	}
	*f = OptionalFloat{Valid: true, Value: value}
	return nil
}

func (f OptionalFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte(`"NA"`), nil
	}
	return json.Marshal(f.Value)
}

// OptionalCIPair holds the bootstrap CIs for the effect and its SE, or "NA"
type OptionalCIPair struct {
	Valid  bool
	Effect CI
	SE     CI
}

func (p *OptionalCIPair) UnmarshalJSON(data []byte) error {
	if isNA(data) {
		*p = OptionalCIPair{}
		return nil
	}
	var pair [2]CI
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("bootstrap CI pair: %w", err)
	}
	*p = OptionalCIPair{Valid: true, Effect: pair[0], SE: pair[1]}
	return nil
}

func (p OptionalCIPair) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte(`"NA"`), nil
	}
	return json.Marshal([2]CI{p.Effect, p.SE})
}

// OptionalPair holds the bootstrap SEs for the effect and its SE, or "NA"
type OptionalPair struct {
	Valid  bool
	Effect float64
	SE     float64
}

func (p *OptionalPair) UnmarshalJSON(data []byte) error {
	if isNA(data) {
		*p = OptionalPair{}
		return nil
	}
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("bootstrap SE pair: %w", err)
	}
	*p = OptionalPair{Valid: true, Effect: pair[0], SE: pair[1]}
	return nil
}

func (p OptionalPair) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte(`"NA"`), nil
	}
	return json.Marshal([2]float64{p.Effect, p.SE})
}

func isNA(data []byte) bool {
	return string(data) == `"NA"` || string(data) == "null"
}

// PublicationBias is the Egger-style publication-bias sub-record
type PublicationBias struct {
	EggerCoef            float64    `json:"eggerCoef"`
	EggerSE              float64    `json:"eggerSE"`
	IsSignificant        bool       `json:"isSignificant"`
	EggerBootCI          OptionalCI `json:"eggerBootCI"`
	EggerAndersonRubinCI OptionalCI `json:"eggerAndersonRubinCI"`
	PValue               *float64   `json:"pValue,omitempty"`
}

// HausmanTest is the exogeneity diagnostic sub-record
type HausmanTest struct {
	Statistic     float64 `json:"statistic"`
	CriticalValue float64 `json:"criticalValue"`
	RejectsNull   bool    `json:"rejectsNull"`
}

// FirstStage describes which first-stage specification the estimator ran
type FirstStage struct {
	Mode            string `json:"mode"` // "levels" or "log"
	Description     string `json:"description"`
	FStatisticLabel string `json:"fStatisticLabel,omitempty"`
}

// ModelResults is the estimator's response payload. Opaque and immutable
// once received; only the projector consumes it.
type ModelResults struct {
	EffectEstimate  float64         `json:"effectEstimate"`
	StandardError   float64         `json:"standardError"`
	IsSignificant   bool            `json:"isSignificant"`
	AndersonRubinCI OptionalCI      `json:"andersonRubinCI"`
	PublicationBias PublicationBias `json:"publicationBias"`
	FirstStageFTest OptionalFloat   `json:"firstStageFTest"`
	HausmanTest     HausmanTest     `json:"hausmanTest"`
	SEInstrumented  []float64       `json:"seInstrumented"`
	FunnelPlot      string          `json:"funnelPlot"` // base64-encoded image
	FunnelPlotWidth int             `json:"funnelPlotWidth"`
	FunnelPlotHght  int             `json:"funnelPlotHeight"`
	BootCI          OptionalCIPair  `json:"bootCI"`
	BootSE          OptionalPair    `json:"bootSE"`
	FirstStage      *FirstStage     `json:"firstStage,omitempty"`
}
