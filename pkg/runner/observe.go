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

package runner

import (
	"context"
	"time"
)

// ObserverFunc receives every completed invocation with its duration and error.
type ObserverFunc func(inv Invocation, d time.Duration, err error)

type observed struct {
	Runner
	fn ObserverFunc
}

// WithObserver returns a Runner that reports each Run and Output call to fn.
func WithObserver(r Runner, fn ObserverFunc) Runner {
	if fn == nil {
		return r
	}
	return &observed{Runner: r, fn: fn}
}

func (o *observed) Run(ctx context.Context, inv Invocation) error {
	start := time.Now()
	err := o.Runner.Run(ctx, inv)
	o.fn(inv, time.Since(start), err)
	return err
}

func (o *observed) Output(ctx context.Context, inv Invocation) (string, error) {
	start := time.Now()
	out, err := o.Runner.Output(ctx, inv)
	o.fn(inv, time.Since(start), err)
	return out, err
}
