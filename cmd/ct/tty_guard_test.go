package main

import "testing"

func TestShouldSuppressTTYQueries(t *testing.T) {
	tests := []struct {
		args    []string
		envTest bool
		want    bool
	}{
		{nil, false, false},
		{nil, true, true},
		{[]string{"report.json"}, false, false},
		{[]string{"view", "report.json"}, false, false},
		{[]string{"print", "report.json"}, false, true},
		{[]string{"--cutoff", "14d", "export", "-f", "html", "r.json"}, false, true},
		{[]string{"export", "--wizard", "r.json"}, false, false},
		{[]string{"--version"}, false, true},
		{[]string{"view", "-h"}, false, true},
	}
	for _, tt := range tests {
		if got := shouldSuppressTTYQueries(tt.args, tt.envTest); got != tt.want {
			t.Errorf("shouldSuppressTTYQueries(%q, %v) = %v, want %v", tt.args, tt.envTest, got, tt.want)
		}
	}
}
