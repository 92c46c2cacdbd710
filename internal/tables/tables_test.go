package tables

import "testing"

func TestRequire(t *testing.T) {
	tab := Default()
	name, err := tab.Sex.Require("0001", "M")
	if err != nil {
		t.Fatalf("Require(M): %v", err)
	}
	if name == "" {
		t.Error("Require(M) returned empty display text")
	}
	if _, err := tab.Sex.Require("0001", "X"); err == nil {
		t.Error("Require(X) should fail for a code outside table 0001")
	}
}

func TestHasAndName(t *testing.T) {
	tab := Default()
	if !tab.Department.Has("01") {
		t.Error("department 01 should be in table 0069")
	}
	if tab.Department.Has("ZZ") {
		t.Error("department ZZ should not be in table 0069")
	}
	if got := tab.Department.Name("ZZ"); got != "" {
		t.Errorf("Name(ZZ) = %q, want empty", got)
	}
}

func TestValidateMessageType(t *testing.T) {
	tab := Default()
	cases := []struct {
		code, trigger, structure string
		ok                       bool
	}{
		{"ADT", "A08", "ADT_A01", true},
		{"RDE", "O11", "RDE_O11", true},
		{"OUL", "R22", "OUL_R22", true},
		{"PPR", "ZD1", "PPR_ZD1", true},
		{"XXX", "A08", "ADT_A01", false},
		{"ADT", "Z99", "ADT_A01", false},
		{"ADT", "A08", "NOPE_X", false},
	}
	for _, c := range cases {
		err := tab.ValidateMessageType(c.code, c.trigger, c.structure)
		if c.ok && err != nil {
			t.Errorf("ValidateMessageType(%s,%s,%s): %v", c.code, c.trigger, c.structure, err)
		}
		if !c.ok && err == nil {
			t.Errorf("ValidateMessageType(%s,%s,%s): want error", c.code, c.trigger, c.structure)
		}
	}
}

func TestInsurancePlanTable(t *testing.T) {
	tab := Default()
	if len(tab.InsurancePlan) == 0 {
		t.Fatal("insurance plan table is empty")
	}
	for code, plan := range tab.InsurancePlan {
		if plan.Name == "" {
			t.Errorf("plan %s has no display name", code)
		}
		if plan.Classification == "" {
			t.Errorf("plan %s has no classification", code)
		}
	}
}
