// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package serializer encodes and decodes cprpkg data structures.
//
// Writers support three formats:
//   - JSON: indented, machine-readable output
//   - YAML: the format used for recipes and package.yaml
//   - Table: flattened FIELD/VALUE rows for terminals (write-only)
//
// Readers decode JSON and YAML from any io.Reader or from a file whose
// format is detected by extension.
//
// Usage:
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatYAML, "")
//	defer w.Close()
//	if err := w.Serialize(ctx, descriptor); err != nil {
//		return err
//	}
//
//	r, err := serializer.FromFile[recipe.Recipe]("cpr.yaml")
package serializer
