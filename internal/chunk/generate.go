package chunk

import (
	"errors"
	"sort"

	"coderag/internal/parser"
)

// ErrEmptyCorpus reports a codebase that produced zero chunks. Builds fail on
// it rather than persisting a degenerate index.
var ErrEmptyCorpus = errors.New("no code chunks produced from codebase")

// Generate flattens parsed files into a single chunk sequence with dense IDs.
// The order is deterministic so rebuilds of an unchanged codebase produce
// identical chunks: files ascending by path; within a file, each class
// (ascending by line) followed by its methods (ascending by line), then all
// top-level functions (ascending by line).
func Generate(files []parser.FileResult) ([]CodeChunk, error) {
	sorted := make([]parser.FileResult, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var chunks []CodeChunk
	id := 0

	for _, f := range sorted {
		classes := make([]parser.Class, len(f.Classes))
		copy(classes, f.Classes)
		sort.Slice(classes, func(i, j int) bool { return classes[i].Line < classes[j].Line })

		for _, cls := range classes {
			chunks = append(chunks, CodeChunk{
				ID:        id,
				Kind:      KindClass,
				Name:      cls.Name,
				File:      f.Path,
				Line:      cls.Line,
				Content:   cls.Content,
				Docstring: cls.Docstring,
				Extra:     &ClassDetail{NumMethods: len(cls.Methods)},
			})
			id++

			methods := make([]parser.Method, len(cls.Methods))
			copy(methods, cls.Methods)
			sort.Slice(methods, func(i, j int) bool { return methods[i].Line < methods[j].Line })

			for _, m := range methods {
				chunks = append(chunks, CodeChunk{
					ID:        id,
					Kind:      KindMethod,
					Name:      m.Name,
					Owner:     cls.Name,
					File:      f.Path,
					Line:      m.Line,
					Content:   m.Content,
					Docstring: m.Docstring,
				})
				id++
			}
		}

		functions := make([]parser.Function, len(f.Functions))
		copy(functions, f.Functions)
		sort.Slice(functions, func(i, j int) bool { return functions[i].Line < functions[j].Line })

		for _, fn := range functions {
			chunks = append(chunks, CodeChunk{
				ID:        id,
				Kind:      KindFunction,
				Name:      fn.Name,
				File:      f.Path,
				Line:      fn.Line,
				Content:   fn.Content,
				Docstring: fn.Docstring,
			})
			id++
		}
	}

	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}
	return chunks, nil
}
