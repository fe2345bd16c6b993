// Package sparql models the queries the ontology cache sends to its schema
// store and the contract that store must satisfy.
//
// Queries are built as a small AST (SELECT and ASK over group patterns with
// OPTIONAL, VALUES, property paths and FILTER) that renders to SPARQL 1.1 text
// for remote endpoints and is evaluated directly by the in-memory store.
package sparql

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/vocabulary"
)

var (
	// ErrQueryFailed is returned when the store cannot execute a query.
	ErrQueryFailed = stderrors.New("sparql query failed")

	// ErrMalformedResult is returned when a result set cannot be decoded.
	ErrMalformedResult = stderrors.New("malformed sparql result")
)

// Service executes queries against a graph-backed schema store.
type Service interface {
	// ExecuteAsk evaluates an ASK query.
	ExecuteAsk(ctx context.Context, q *AskQuery) (bool, error)

	// ExecuteSelectStream evaluates a SELECT query and calls fn once per
	// solution, in store order. An error returned by fn stops the stream and
	// is returned unchanged.
	ExecuteSelectStream(ctx context.Context, q *SelectQuery, fn func(Row) error) error

	// LoadByIdentifier loads the resource uri, which must be an instance of
	// rdfType or one of its subclasses. Labels and comments are restricted to
	// lang and untagged values unless lang is empty. The boolean is false
	// when no such resource exists.
	LoadByIdentifier(ctx context.Context, rdfType, uri, lang string) (*Resource, bool, error)
}

// Selector is the streaming half of Service.
type Selector interface {
	ExecuteSelectStream(ctx context.Context, q *SelectQuery, fn func(Row) error) error
}

// Resource is a described node loaded by identifier.
type Resource struct {
	URI  string
	Type string

	// Labels and Comments are keyed by language tag; "" holds untagged values.
	Labels   map[string]string
	Comments map[string]string

	// Parent is the first IRI superclass or superproperty found, if any.
	Parent string
}

// Collect runs q and materialises every row.
func Collect(ctx context.Context, s Selector, q *SelectQuery) ([]Row, error) {
	var rows []Row
	err := s.ExecuteSelectStream(ctx, q, func(r Row) error {
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadByIdentifier implements Service.LoadByIdentifier on top of a Selector.
func LoadByIdentifier(ctx context.Context, s Selector, rdfType, uri, lang string) (*Resource, bool, error) {
	uri = vocabulary.FormatURI(uri)
	rdfType = vocabulary.FormatURI(rdfType)
	if uri == "" || rdfType == "" {
		return nil, false, errors.WrapInvalid(errors.ErrInvalidData, "sparql", "LoadByIdentifier",
			"uri and type are required")
	}

	subject := IRI(uri)
	where := NewGroup(
		Triple(subject, IRI(vocabulary.RdfType), Var("type")),
		ZeroOrMore(Var("type"), vocabulary.RdfsSubClassOf, IRI(rdfType)),
	)
	where.Optional(labelGroup(subject, vocabulary.RdfsLabel, "label", lang))
	where.Optional(labelGroup(subject, vocabulary.RdfsComment, "comment", lang))
	where.Optional(NewGroup(
		Triple(subject, IRI(vocabulary.RdfsSubClassOf), Var("parent")),
	).Filter(IsIRIExpr{Var: "parent"}))
	where.Optional(NewGroup(
		Triple(subject, IRI(vocabulary.RdfsSubPropertyOf), Var("parentProperty")),
	).Filter(IsIRIExpr{Var: "parentProperty"}))

	q := Select("type", "label", "comment", "parent", "parentProperty")
	q.Where = where

	var res *Resource
	err := s.ExecuteSelectStream(ctx, q, func(row Row) error {
		if res == nil {
			res = &Resource{
				URI:      uri,
				Type:     row.Value("type"),
				Labels:   make(map[string]string),
				Comments: make(map[string]string),
			}
		}
		if t, ok := row.Get("label"); ok {
			if _, seen := res.Labels[t.Lang]; !seen {
				res.Labels[t.Lang] = t.Value
			}
		}
		if t, ok := row.Get("comment"); ok {
			if _, seen := res.Comments[t.Lang]; !seen {
				res.Comments[t.Lang] = t.Value
			}
		}
		if res.Parent == "" {
			if p := row.Value("parent"); p != "" {
				res.Parent = p
			} else if p := row.Value("parentProperty"); p != "" {
				res.Parent = p
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", uri, err)
	}
	if res == nil {
		return nil, false, nil
	}
	return res, true, nil
}

func labelGroup(subject Term, predicate, variable, lang string) *Group {
	g := NewGroup(Triple(subject, IRI(predicate), Var(variable)))
	if lang != "" {
		g.Filter(Or{Exprs: []Expr{
			LangMatches{Var: variable, Lang: lang},
			LangMatches{Var: variable, Lang: ""},
		}})
	}
	return g
}
