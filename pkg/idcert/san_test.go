// Copyright 2026 The Candlepin Authors.
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

package idcert

import "testing"

func TestCommonNameSAN(t *testing.T) {
	ext, err := CommonNameSAN("my system")
	if err != nil {
		t.Fatal(err)
	}
	if !ext.Id.Equal(oidSubjectAltName) {
		t.Errorf("unexpected OID %v", ext.Id)
	}
	if ext.Critical {
		t.Error("subjectAltName should not be critical")
	}
	got, err := renderGeneralNames(ext.Value)
	if err != nil {
		t.Fatal(err)
	}
	if got != "DirName:/CN=my system" {
		t.Errorf("unexpected rendering %q", got)
	}
}

func TestRenderGeneralNamesRejectsGarbage(t *testing.T) {
	for name, der := range map[string][]byte{
		"empty":        {},
		"not sequence": {0x04, 0x01, 0x00},
		"trailing":     {0x30, 0x00, 0x00},
	} {
		if _, err := renderGeneralNames(der); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestHexColon(t *testing.T) {
	if got := hexColon([]byte{0x0a, 0xff, 0x10}); got != "0A:FF:10" {
		t.Errorf("unexpected %s", got)
	}
	if got := hexColon(nil); got != "" {
		t.Errorf("unexpected %s", got)
	}
}
