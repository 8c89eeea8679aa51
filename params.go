package tinymod

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// parameterDocument is a parsed parameters document:
//
//	LoggerImpl:
//	  level: debug
//	  retries: 3
//
// Values stay as nodes until the slot type is known.
type parameterDocument map[ComponentID]map[string]yaml.Node

func readParameterDocuments(r io.Reader) ([]parameterDocument, error) {
	dec := yaml.NewDecoder(r)
	docs := make([]parameterDocument, 0, 1)

	for {
		var doc parameterDocument
		err := dec.Decode(&doc)

		if errors.Is(err, io.EOF) {
			return docs, nil
		}

		if err != nil {
			return nil, newParametersDocumentError(err, "", "")
		}

		if doc != nil {
			docs = append(docs, doc)
		}
	}
}
