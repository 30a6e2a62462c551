// Package conjuss loads the CONJUSS salary reference table: base pay per
// (grade level, step). The table is consumed, never computed; payroll and
// staff reads look base pay up here.
package conjuss

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	MinGradeLevel = 1
	MaxGradeLevel = 17
	MinStep       = 1
	MaxStep       = 15
)

func ValidGradeLevel(grade int) bool {
	return grade >= MinGradeLevel && grade <= MaxGradeLevel
}

func ValidStep(step int) bool {
	return step >= MinStep && step <= MaxStep
}

type Table struct {
	basePay map[int]map[int]decimal.Decimal
}

type tableFile struct {
	Grades []struct {
		Grade int `yaml:"grade"`
		Steps []struct {
			Step    int    `yaml:"step"`
			BasePay string `yaml:"base_pay"`
		} `yaml:"steps"`
	} `yaml:"grades"`
}

// Load reads the table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("conjuss: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Table from YAML bytes. Duplicate (grade, step) pairs and
// out-of-range coordinates are rejected rather than silently overwritten.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("conjuss: parse: %w", err)
	}

	t := &Table{basePay: make(map[int]map[int]decimal.Decimal)}
	for _, g := range f.Grades {
		if !ValidGradeLevel(g.Grade) {
			return nil, fmt.Errorf("conjuss: grade %d out of range", g.Grade)
		}
		for _, s := range g.Steps {
			if !ValidStep(s.Step) {
				return nil, fmt.Errorf("conjuss: grade %d step %d out of range", g.Grade, s.Step)
			}
			pay, err := decimal.NewFromString(s.BasePay)
			if err != nil {
				return nil, fmt.Errorf("conjuss: grade %d step %d base_pay %q: %w", g.Grade, s.Step, s.BasePay, err)
			}
			if !pay.IsPositive() {
				return nil, fmt.Errorf("conjuss: grade %d step %d base_pay must be positive", g.Grade, s.Step)
			}
			if t.basePay[g.Grade] == nil {
				t.basePay[g.Grade] = make(map[int]decimal.Decimal)
			}
			if _, dup := t.basePay[g.Grade][s.Step]; dup {
				return nil, fmt.Errorf("conjuss: duplicate entry for grade %d step %d", g.Grade, s.Step)
			}
			t.basePay[g.Grade][s.Step] = pay
		}
	}
	return t, nil
}

// BasePay looks up the base pay for a grade/step. ok is false when the
// table has no entry for the pair.
func (t *Table) BasePay(grade, step int) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Zero, false
	}
	steps, ok := t.basePay[grade]
	if !ok {
		return decimal.Zero, false
	}
	pay, ok := steps[step]
	return pay, ok
}
