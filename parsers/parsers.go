// Package parsers adapts DIMACS CNF/model files to the sat package's
// Solver API. This is an external collaborator (spec.md §1 Non-goals:
// parsing and I/O are out of scope for the core itself).
package parsers

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/rhartert/dimacs"

	"github.com/satcore/yasscore/internal/sat"
)

// SATSolver is the subset of sat.Solver's API a DIMACS loader needs.
type SATSolver interface {
	NewVar() (sat.Var, error)
	AddClause([]sat.Lit) (bool, error)
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// LoadDIMACS parses the DIMACS CNF file and loads its formula into solver
// via new_var/add_clause.
func LoadDIMACS(filename string, gzipped bool, solver SATSolver) error {
	r, err := reader(filename, gzipped)
	if err != nil {
		return fmt.Errorf("error reading file %q: %s", filename, err)
	}
	defer r.Close()

	b := &builder{solver: solver}
	return dimacs.ReadBuilder(r, b)
}

// builder wraps the solver to implement dimacs.Builder.
type builder struct {
	solver SATSolver
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("not a CNF problem")
	}
	for i := 0; i < nVars; i++ {
		if _, err := b.solver.NewVar(); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	clause := make([]sat.Lit, len(tmpClause))
	for i, l := range tmpClause {
		if l < 0 {
			clause[i] = sat.MkLit(sat.Var(-l-1), true)
		} else {
			clause[i] = sat.MkLit(sat.Var(l-1), false)
		}
	}
	_, err := b.solver.AddClause(clause)
	return err
}

func (b *builder) Comment(_ string) error {
	return nil // ignore comments
}

// ReadModels returns the list of models (if any) contained in filename, a
// DIMACS-style file where every clause line is one model's polarity
// vector (the teacher's test-fixture format).
func ReadModels(filename string) ([][]bool, error) {
	r, err := reader(filename, false)
	if err != nil {
		return nil, fmt.Errorf("error reading file %q: %s", filename, err)
	}
	defer r.Close()

	b := &modelBuilder{}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return nil, err
	}
	return b.models, nil
}

type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return fmt.Errorf("model files should not have problem lines")
}

func (b *modelBuilder) Comment(_ string) error {
	return nil // ignore comments
}

func (b *modelBuilder) Clause(tmpClause []int) error {
	model := make([]bool, len(tmpClause))
	for i, l := range tmpClause {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}
