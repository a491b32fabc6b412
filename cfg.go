/*
 * Copyright (c) 2023 The cppdrv Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cppdrv

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfFile is the optional per-project driver configuration, looked up in
// the working directory and then in $HOME. Entries act as defaults:
// command-line private options append after (and override) them.
const ConfFile = "cppdrv.yaml"

type fileConf struct {
	RealCPP string   `yaml:"realcpp"` // default delegate command prefix
	Suffix  string   `yaml:"suffix"`  // scratch-file suffix override
	Check   bool     `yaml:"check"`   // consistency check after checkable passes
	Strict  bool     `yaml:"strict"`  // check failures become fatal
	Verbose bool     `yaml:"verbose"`
	Plugins []string `yaml:"plugins"` // loaded before command-line -plugin names
	Passes  []string `yaml:"passes"`  // enabled before command-line -fpass- names
}

func loadFileConf() (conf fileConf) {
	for _, dir := range confDirs() {
		b, err := os.ReadFile(filepath.Join(dir, ConfFile))
		if err != nil {
			continue
		}
		if yaml.Unmarshal(b, &conf) == nil {
			return
		}
		conf = fileConf{}
	}
	return
}

func confDirs() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	return dirs
}
