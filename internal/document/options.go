// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package document

// Recognized feature keys. ParseOptions types is-content, mv-delimiter
// and index-policy; primary-key, required and anything else in a
// Document's Features map stay in Options.Extra, passed through untouched.
const (
	FeatureIsContent   = "is-content"
	FeatureMVDelimiter = "mv-delimiter"
	FeatureIndexPolicy = "index-policy"
	FeaturePrimaryKey  = "primary-key"
	FeatureRequired    = "required"
)

// Options is the typed subset of a Document's Features map the core
// inspects. The rest of the map stays in Extra, untouched and opaque,
// following the "typed options struct plus opaque map" shape called for
// when a document carries open-ended string flags.
type Options struct {
	// IsContent marks a field or document as holding primary body text
	// (as opposed to metadata).
	IsContent bool

	// MVDelimiter is the multi-value cell delimiter, when the source
	// produced delimited multi-value cells (tabular extraction).
	MVDelimiter string

	// IndexPolicy is an opaque policy name interpreted by the publisher
	// (e.g. "skip", "update-only"); empty means default handling.
	IndexPolicy string

	// Extra holds every feature key not recognized above.
	Extra map[string]string
}

// ParseOptions extracts the typed Options the core reads from an
// open-ended features map, leaving everything else in Options.Extra.
func ParseOptions(features map[string]string) Options {
	opts := Options{Extra: make(map[string]string, len(features))}
	for k, v := range features {
		switch k {
		case FeatureIsContent:
			opts.IsContent = v == "true" || v == "1"
		case FeatureMVDelimiter:
			opts.MVDelimiter = v
		case FeatureIndexPolicy:
			opts.IndexPolicy = v
		default:
			opts.Extra[k] = v
		}
	}
	return opts
}
