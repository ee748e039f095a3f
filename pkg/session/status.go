// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"fmt"

	"laptudirm.com/x/tandem/pkg/control"
)

// report sends the status of the current position to the supervisor.
func (c *Controller) report() {
	eval, wdl := "?", "?"
	if c.hasEval {
		eval, wdl = c.eval.String(), c.eval.WDLString()
	}

	c.send(control.Report(eval, wdl, fmt.Sprintf("%+d", c.model.Material())))
}
