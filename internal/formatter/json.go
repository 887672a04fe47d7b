package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
)

func formatJSON(result *Result) (string, error) {
	out := map[string]any{
		"type": resultTypeStr(result.Type),
	}
	if result.Duration > 0 {
		out["duration"] = result.Duration.String()
	}
	switch result.Type {
	case ResultSearch:
		out["query"] = result.Query
		out["results"] = result.Results
		out["suggestions"] = result.Suggestions
		out["weights"] = result.Weights
	case ResultSuggestions:
		out["query"] = result.Query
		out["suggestions"] = result.Suggestions
	case ResultSong:
		out["song"] = result.Song
	case ResultSongs:
		out["songs"] = result.Songs
	case ResultWeights:
		out["weights"] = result.Weights
	}
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func resultTypeStr(t ResultType) string {
	switch t {
	case ResultSearch:
		return "search"
	case ResultSuggestions:
		return "suggestions"
	case ResultSong:
		return "song"
	case ResultSongs:
		return "songs"
	case ResultWeights:
		return "weights"
	}
	return ""
}
