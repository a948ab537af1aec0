// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
//	app_path = "example-app"
//	targets = {
//	  Models    = "app/Models/*.php"
//	  "!Events" = "app/Events/*"
//	}
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "view-config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	attrs, diags := hclFile.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{}
	for name, attr := range attrs {
		switch name {
		case "app_path":
			value, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, errors.Errorf("decoding app_path: %s", diags.Error())
			}
			if value.Type() != cty.String || value.IsNull() {
				return nil, errors.Errorf("app_path must be a string")
			}
			cfg.AppPath = value.AsString()
		case string(SectionTargets), string(SectionSingles):
			ps, err := decodeHCLPatterns(attr.Expr)
			if err != nil {
				return nil, errors.Errorf("decoding %s: %w", name, err)
			}
			if name == string(SectionTargets) {
				cfg.Targets = ps
			} else {
				cfg.Singles = ps
			}
		default:
			return nil, errors.Errorf("unsupported attribute %q", name)
		}
	}

	return cfg, nil
}

// decodeHCLPatterns reads an object constructor item by item so that the
// group order written in the file survives.
func decodeHCLPatterns(expr hcl.Expression) (Patterns, error) {
	obj, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil, errors.Errorf("patterns must be an object")
	}

	out := make(Patterns, 0, len(obj.Items))
	for _, item := range obj.Items {
		key, diags := item.KeyExpr.Value(nil)
		if diags.HasErrors() {
			return nil, errors.Errorf("pattern name: %s", diags.Error())
		}
		value, diags := item.ValueExpr.Value(nil)
		if diags.HasErrors() {
			return nil, errors.Errorf("pattern value: %s", diags.Error())
		}
		if key.Type() != cty.String || key.IsNull() {
			return nil, errors.Errorf("pattern name must be a string")
		}
		if value.Type() != cty.String || value.IsNull() {
			return nil, errors.Errorf("pattern %q must be a string", key.AsString())
		}
		out = out.set(Pattern{Name: key.AsString(), Value: value.AsString()})
	}
	return out, nil
}
