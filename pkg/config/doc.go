/*
Package config loads rule set definitions for rewriterc.

	            +-------------+
	            |  model.     |
	            |  Config     |
	            +------+------+
	                   |
	   +--------+------+------+--------+
	   |        |             |        |
	+--+--+  +--+--+      +---+--+  +--+---+
	| YAML|  | JSON|      |  HCL |  | TOML |
	+-----+  +-----+      +------+  +------+

🎯 Purpose:
- Reads a migration's passes and rules from a file
- Selects a parser by file extension through a small registry
- Rejects unknown fields so typos never silently drop a rule
- Validates and fills in defaults before anything is compiled

🔄 Flow:
1. Load reads the file (or Discover finds .rewriterc.* in a directory)
2. The registered parser for the extension decodes it into model.Config
3. model.Config.Validate checks structure and applies defaults
4. The caller compiles it with text.Compile, which checks patterns

📦 Import roots:
Import-scoped rules only touch quoted module paths that start with one of
import_roots (default "./", "../" and "@"). Projects that resolve bare
aliases need to list them, or those imports are never rewritten:

	import_roots: ["./", "../", "Store/", "App/"]
	passes:
	  - name: imports
	    rules:
	      - pattern: seriesActions
	        replacement: eventDetailActions
	        scope: import

🔍 Example:

	cfg, err := config.Load(ctx, ".rewriterc.yaml")
	if err != nil {
		return err
	}
	rs, err := text.Compile(cfg)
*/
package config
