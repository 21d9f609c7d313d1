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

// Package config holds the resolved, immutable request for one packaging run.
//
// A Request is built once with functional options after every optional
// parameter has been resolved (flags, manifest inference, prompts). The
// pipeline only reads it through getters.
//
//	req := config.NewRequest(
//	    config.WithName("svc"),
//	    config.WithProjectHome("./svc"),
//	    config.WithPort(8080),
//	    config.WithImageName("registry.example.com/svc:2.0.0"),
//	)
//	if err := req.Validate(); err != nil {
//	    return err
//	}
//
// Use With to derive a modified copy; the receiver is never changed.
package config
