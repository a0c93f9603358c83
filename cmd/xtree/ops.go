package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrInvalidOp = errors.New("[xtree] invalid op")

type OpKind uint8

const (
	OpInsert OpKind = iota
	OpDelete
	OpContains
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpContains:
		return "contains"
	default:
	}
	return "unknown"
}

// Op is one scripted tree operation.
//
//	+k insert k
//	-k delete k
//	?k contains k
type Op struct {
	Kind OpKind
	Key  int64
}

func (op Op) String() string {
	switch op.Kind {
	case OpInsert:
		return "+" + strconv.FormatInt(op.Key, 10)
	case OpDelete:
		return "-" + strconv.FormatInt(op.Key, 10)
	case OpContains:
		return "?" + strconv.FormatInt(op.Key, 10)
	default:
	}
	return "!" + strconv.FormatInt(op.Key, 10)
}

func parseOp(token string) (Op, error) {
	if len(token) < 2 {
		return Op{}, fmt.Errorf("%w: %q", ErrInvalidOp, token)
	}
	var op Op
	switch token[0] {
	case '+':
		op.Kind = OpInsert
	case '-':
		op.Kind = OpDelete
	case '?':
		op.Kind = OpContains
	default:
		return Op{}, fmt.Errorf("%w: %q has no +, - or ? prefix", ErrInvalidOp, token)
	}
	key, err := strconv.ParseInt(token[1:], 10, 64)
	if err != nil {
		return Op{}, fmt.Errorf("%w: %q, %w", ErrInvalidOp, token, err)
	}
	op.Key = key
	return op, nil
}

// ParseOps reads whitespace separated ops, "#" starts a line comment.
func ParseOps(r io.Reader) ([]Op, error) {
	ops := make([]Op, 0, 64)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if idx := strings.IndexByte(text, '#'); idx >= 0 {
			text = text[:idx]
		}
		for _, token := range strings.Fields(text) {
			op, err := parseOp(token)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			ops = append(ops, op)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}
