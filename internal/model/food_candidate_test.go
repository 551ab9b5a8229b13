package model

import "testing"

func TestFoodCandidate_Validate(t *testing.T) {
	tests := []struct {
		name      string
		candidate FoodCandidate
		wantErr   bool
	}{
		{
			name: "valid candidate",
			candidate: FoodCandidate{
				Name:           "chicken",
				WeightLow:      450,
				WeightEstimate: 500,
				WeightHigh:     550,
				Confidence:     0.9,
			},
		},
		{
			name: "estimate equal to bounds",
			candidate: FoodCandidate{
				Name:           "rice",
				WeightLow:      150,
				WeightEstimate: 150,
				WeightHigh:     150,
				Confidence:     0.5,
			},
		},
		{
			name: "missing name",
			candidate: FoodCandidate{
				WeightLow:      10,
				WeightEstimate: 20,
				WeightHigh:     30,
				Confidence:     0.5,
			},
			wantErr: true,
		},
		{
			name: "zero estimate",
			candidate: FoodCandidate{
				Name:       "burger",
				Confidence: 0.5,
			},
			wantErr: true,
		},
		{
			name: "estimate below range",
			candidate: FoodCandidate{
				Name:           "burger",
				WeightLow:      200,
				WeightEstimate: 100,
				WeightHigh:     300,
				Confidence:     0.5,
			},
			wantErr: true,
		},
		{
			name: "confidence out of range",
			candidate: FoodCandidate{
				Name:           "burger",
				WeightLow:      100,
				WeightEstimate: 180,
				WeightHigh:     250,
				Confidence:     1.2,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.candidate.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseCookingMethod(t *testing.T) {
	tests := []struct {
		input string
		want  CookingMethod
	}{
		{"grilled", MethodGrilled},
		{"FRIED", MethodFried},
		{" boiled ", MethodBoiled},
		{"baked", MethodBaked},
		{"raw", MethodRaw},
		{"sous-vide", MethodUnknown},
		{"", MethodUnknown},
	}

	for _, tt := range tests {
		if got := ParseCookingMethod(tt.input); got != tt.want {
			t.Errorf("ParseCookingMethod(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestFoodCandidate_AddAssumption(t *testing.T) {
	c := FoodCandidate{Name: "chicken"}
	c.AddAssumption("reduced gross weight to edible portion")
	c.AddAssumption("reduced gross weight to edible portion")
	c.AddAssumption("assumed medium portion")

	if len(c.Assumptions) != 2 {
		t.Errorf("expected 2 unique assumptions, got %d: %v", len(c.Assumptions), c.Assumptions)
	}
}

func TestFoodCandidate_ClampRange(t *testing.T) {
	c := FoodCandidate{Name: "rice", WeightLow: 200, WeightEstimate: 150, WeightHigh: 120}
	c.ClampRange()

	if err := (&FoodCandidate{
		Name:           c.Name,
		WeightLow:      c.WeightLow,
		WeightEstimate: c.WeightEstimate,
		WeightHigh:     c.WeightHigh,
		Confidence:     0.5,
	}).Validate(); err != nil {
		t.Errorf("clamped candidate still invalid: %v", err)
	}
}
