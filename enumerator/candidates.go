//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"fmt"
	"path/filepath"
	"sort"
)

// DefaultDevFolder is the folder where device nodes are searched.
const DefaultDevFolder = "/dev"

// DefaultSysFolder is the mount point of sysfs.
const DefaultSysFolder = "/sys"

// DefaultPatterns are the device node names probed on Linux.
var DefaultPatterns = []string{
	"ttyS*",
	"ttyUSB*",
	"ttyACM*",
	"ttyAMA*",
	"rfcomm*",
}

// globCandidates returns the sorted, de-duplicated paths in devFolder
// matching any of the patterns. If keep is not nil only the paths for
// which it returns true are kept.
func globCandidates(devFolder string, patterns []string, keep func(string) bool) ([]string, error) {
	seen := map[string]bool{}
	var res []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(devFolder, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			if keep != nil && !keep(m) {
				continue
			}
			res = append(res, m)
		}
	}
	sort.Strings(res)
	return res, nil
}
