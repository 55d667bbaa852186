// Package main provides a CLI to check OpenAPI compatibility between two
// generated swagger documents. It is used in CI to catch breaking API changes
// before the mobile client picks up a new revision.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var knownMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// endpoint is one method+path operation with the facts that matter for
// backward compatibility: response codes offered and parameters required.
type endpoint struct {
	responses      map[string]struct{}
	requiredParams map[string]struct{}
}

type apiSurface struct {
	endpoints map[string]endpoint // key: "METHOD path"
}

func main() {
	basePath := flag.String("base", "", "base swagger.yaml path (currently deployed)")
	revisionPath := flag.String("revision", "", "revision swagger.yaml path (candidate)")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" || strings.TrimSpace(*revisionPath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> -revision <path>")
		os.Exit(2)
	}

	base, err := loadSurface(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}
	revision, err := loadSurface(*revisionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	breaks := diffSurfaces(base, revision)
	if len(breaks) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, b := range breaks {
			fmt.Fprintf(os.Stderr, "- %s\n", b)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}

func loadSurface(path string) (apiSurface, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return apiSurface{}, err
	}

	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return apiSurface{}, err
	}

	pathsMap, ok := asMap(doc["paths"])
	if !ok {
		return apiSurface{}, errors.New("missing or malformed top-level paths field")
	}

	surface := apiSurface{endpoints: make(map[string]endpoint)}
	for pathKey, pathEntry := range pathsMap {
		opsMap, ok := asMap(pathEntry)
		if !ok {
			continue
		}
		for methodKey, methodEntry := range opsMap {
			method := strings.ToLower(strings.TrimSpace(methodKey))
			if _, known := knownMethods[method]; !known {
				continue
			}
			opMap, ok := asMap(methodEntry)
			if !ok {
				continue
			}
			key := strings.ToUpper(method) + " " + pathKey
			surface.endpoints[key] = endpoint{
				responses:      collectResponses(opMap),
				requiredParams: collectRequiredParams(opMap),
			}
		}
	}

	return surface, nil
}

func collectResponses(opMap map[string]interface{}) map[string]struct{} {
	out := make(map[string]struct{})
	responsesMap, ok := asMap(opMap["responses"])
	if !ok {
		return out
	}
	for code := range responsesMap {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" {
			out[code] = struct{}{}
		}
	}
	return out
}

func collectRequiredParams(opMap map[string]interface{}) map[string]struct{} {
	out := make(map[string]struct{})
	paramsRaw, ok := opMap["parameters"].([]interface{})
	if !ok {
		return out
	}
	for _, p := range paramsRaw {
		paramMap, ok := asMap(p)
		if !ok {
			continue
		}
		required, _ := paramMap["required"].(bool)
		name, _ := paramMap["name"].(string)
		if required && name != "" {
			out[name] = struct{}{}
		}
	}
	return out
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// diffSurfaces returns the breaking changes introduced by revision relative
// to base: removed endpoints, removed response codes, and newly required
// parameters. Additions are never breaking.
func diffSurfaces(base, revision apiSurface) []string {
	var breaks []string

	for key, baseEp := range base.endpoints {
		revEp, ok := revision.endpoints[key]
		if !ok {
			breaks = append(breaks, "removed endpoint: "+key)
			continue
		}

		for code := range baseEp.responses {
			if _, ok := revEp.responses[code]; !ok {
				breaks = append(breaks, fmt.Sprintf("removed response code: %s -> %s", key, strings.ToUpper(code)))
			}
		}

		for name := range revEp.requiredParams {
			if _, ok := baseEp.requiredParams[name]; !ok {
				breaks = append(breaks, fmt.Sprintf("newly required parameter: %s -> %q", key, name))
			}
		}
	}

	sort.Strings(breaks)
	return breaks
}
