package extract

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"src/app.ts", LangJSTS},
		{"src/app.tsx", LangJSTS},
		{"mod.mjs", LangJSTS},
		{"main.py", LangPython},
		{"main.go", LangGo},
		{"lib.rs", LangRust},
		{"App.java", LangJava},
		{"main.dart", LangDart},
		{"Main.kt", LangKotlin},
		{"build.kts", LangKotlin},
		{"App.swift", LangSwift},
		{"Program.cs", LangCSharp},
		{"index.php", LangPHP},
		{"app.rb", LangRuby},
		{"README.md", LangUnknown},
		{"Makefile", LangUnknown},
	}
	for _, tt := range tests {
		if got := LanguageForPath(tt.path); got != tt.want {
			t.Errorf("LanguageForPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestExtractJSTS(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "from imports",
			src: `import { db } from "../db/client";
import React from 'react';`,
			want: []string{"../db/client", "react"},
		},
		{
			name: "require and dynamic import",
			src: `const fs = require("fs");
const mod = await import("./lazy");`,
			want: []string{"fs", "./lazy"},
		},
		{
			name: "side effect and re-export",
			src: `import "./polyfill";
export * from "./types";`,
			want: []string{"./polyfill", "./types"},
		},
		{
			name: "commented out imports are ignored",
			src: `// import { db } from "../db/client";
/* import "./a"; */
import real from "./real";`,
			want: []string{"./real"},
		},
		{
			name: "imports inside template literals are ignored",
			src: "const s = `import x from \"./fake\"`;\nimport y from \"./true\";",
			want: []string{"./true"},
		},
		{
			name: "template interpolation returns to code",
			src:  "const s = `a ${require(\"./inner\")} b`;",
			want: []string{"./inner"},
		},
		{
			name: "regex literal does not eat the line",
			src: `const re = /import "x"/;
import z from "./z";`,
			want: []string{"./z"},
		},
		{
			name: "division is not a regex",
			src: `const x = a / b; // import "nope"
import w from "./w";`,
			want: []string{"./w"},
		},
		{
			name: "duplicates collapse",
			src: `import a from "./x";
import b from "./x";`,
			want: []string{"./x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract([]byte(tt.src), LangJSTS)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractGo(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "import group",
			src: "package main\n\nimport (\n\t\"fmt\"\n\tfoo \"github.com/acme/foo\"\n)\n",
			want: []string{"fmt", "github.com/acme/foo"},
		},
		{
			name: "single import",
			src:  "package main\n\nimport \"os\"\n",
			want: []string{"os"},
		},
		{
			name: "commented import ignored",
			src:  "package main\n\n// import \"fmt\"\nimport \"os\"\n",
			want: []string{"os"},
		},
		{
			name: "raw string ignored",
			src:  "package main\n\nvar s = `import \"fake\"`\nimport \"os\"\n",
			want: []string{"os"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract([]byte(tt.src), LangGo)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractRust(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "use forms",
			src: "use std::collections::HashMap;\nuse serde::{Serialize, Deserialize as De};\nextern crate log;\n",
			want: []string{"std::collections::HashMap", "serde::Serialize", "serde::Deserialize", "log"},
		},
		{
			name: "nested block comment",
			src:  "/* outer /* use fake::thing; */ still comment */\nuse real::thing;\n",
			want: []string{"real::thing"},
		},
		{
			name: "raw string with hashes",
			src:  "let s = r#\"use fake::x;\"#;\nuse real::x;\n",
			want: []string{"real::x"},
		},
		{
			name: "glob use",
			src:  "use prelude::*;\n",
			want: []string{"prelude::*"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract([]byte(tt.src), LangRust)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractJava(t *testing.T) {
	src := `package com.acme;

/* import com.fake.Thing; */
import java.util.List;
import static org.junit.Assert.assertEquals;
import com.acme.util.*;
`
	want := []string{"java.util.List", "org.junit.Assert.assertEquals", "com.acme.util.*"}
	got := Extract([]byte(src), LangJava)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractDart(t *testing.T) {
	src := `// import 'package:fake/fake.dart';
import 'package:flutter/material.dart';
export 'src/widgets.dart';
part 'app.g.dart';
var s = r'import "nope"';
`
	want := []string{"package:flutter/material.dart", "src/widgets.dart", "app.g.dart"}
	got := Extract([]byte(src), LangDart)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractKotlin(t *testing.T) {
	src := `package com.acme

/* nested /* import fake.Thing */ comment */
import kotlinx.coroutines.flow.Flow
import com.acme.util.*
`
	want := []string{"kotlinx.coroutines.flow.Flow", "com.acme.util.*"}
	got := Extract([]byte(src), LangKotlin)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractSwift(t *testing.T) {
	src := `// import Fake
import Foundation
@testable import MyApp
import struct CoreGraphics.CGRect
`
	want := []string{"Foundation", "MyApp", "CoreGraphics"}
	got := Extract([]byte(src), LangSwift)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractCSharp(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "using forms",
			src: "global using System;\nusing System.Collections.Generic;\nusing Alias = Acme.Utils;\nusing static System.Math;\n",
			want: []string{"System", "System.Collections.Generic", "Acme.Utils", "System.Math"},
		},
		{
			name: "stops at namespace declaration",
			src:  "using System;\nnamespace Acme {\nusing Acme.Late;\n}\n",
			want: []string{"System"},
		},
		{
			name: "verbatim string ignored",
			src:  "using System;\nvar s = @\"using Fake;\";\n",
			want: []string{"System"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract([]byte(tt.src), LangCSharp)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractPHP(t *testing.T) {
	src := `<?php
# use Fake\Thing;
use App\Models\User;
use App\Services\{Mailer, Billing as B};
require_once 'vendor/autoload.php';
$s = <<<EOT
use Fake\Heredoc;
EOT;
`
	want := []string{"App\\Models\\User", "App\\Services\\Mailer", "App\\Services\\Billing", "vendor/autoload.php"}
	got := Extract([]byte(src), LangPHP)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractRuby(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "require forms",
			src: "require 'json'\nrequire_relative '../lib/core'\nautoload :Parser, 'parser/current'\n",
			want: []string{"json", "../lib/core", "parser/current"},
		},
		{
			name: "embedded doc block ignored",
			src:  "=begin\nrequire 'fake'\n=end\nrequire 'real'\n",
			want: []string{"real"},
		},
		{
			name: "heredoc body ignored",
			src:  "s = <<~SQL\n  require 'fake'\nSQL\nrequire 'real'\n",
			want: []string{"real"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract([]byte(tt.src), LangRuby)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractPython(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "import statements",
			src:  "import os\nimport a.b, c\nfrom x.y import z\n",
			want: []string{"os", "a.b", "c", "x.y"},
		},
		{
			name: "commented import ignored",
			src:  "# import fake\nimport real\n",
			want: []string{"real"},
		},
		{
			name: "relative from imports keep dotted name",
			src:  "from .sibling import thing\nfrom ..pkg.mod import other\n",
			want: []string{"sibling", "pkg.mod"},
		},
		{
			name: "bare relative import has no module name",
			src:  "from . import helpers\n",
			want: nil,
		},
		{
			name: "syntax error yields nothing",
			src:  "def broken(:\n    import fake\n",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract([]byte(tt.src), LangPython)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.ts")
	if err := os.WriteFile(path, []byte(`import x from "./x";`), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := File(path); !reflect.DeepEqual(got, []string{"./x"}) {
		t.Errorf("File(%q) = %v, want [./x]", path, got)
	}
	if got := File(filepath.Join(dir, "missing.ts")); got != nil {
		t.Errorf("File on missing path = %v, want nil", got)
	}
	if got := File(filepath.Join(dir, "README.md")); got != nil {
		t.Errorf("File on unknown extension = %v, want nil", got)
	}
}
