package phpgen

import "github.com/hlop3z/swan/internal/ast"

// stepSources holds one template per operation kind. Each renders the
// statements of one step inside the version block; field steps run after
// the block has declared $table.
var stepSources = map[ast.OpType]string{
	ast.OpCreateTable: `        // Define table {{.Table.Name}} to be created.
        $table = new xmldb_table({{q .Table.Name}});

        // Adding fields to table {{.Table.Name}}.
{{range .Table.Fields}}        $table->add_field({{q .Name}}, {{fieldSpec $.Table . false}});
{{end}}{{if .Table.Keys}}
        // Adding keys to table {{.Table.Name}}.
{{range .Table.Keys}}        $table->add_key({{q .Name}}, {{keySpec .}});
{{end}}{{end}}{{if .Table.Indexes}}
        // Adding indexes to table {{.Table.Name}}.
{{range .Table.Indexes}}        $table->add_index({{q .Name}}, {{indexSpec .}});
{{end}}{{end}}
        // Conditionally launch create table for {{.Table.Name}}.
        if (!$dbman->table_exists($table)) {
            $dbman->create_table($table);
        }
`,

	ast.OpDropTable: `
        // Define table {{.Table.Name}} to be dropped.
        $table = new xmldb_table({{q .Table.Name}});

        // Conditionally launch drop table for {{.Table.Name}}.
        if ($dbman->table_exists($table)) {
            $dbman->drop_table($table);
        }
`,

	ast.OpAddField: `
        $field = new xmldb_field({{q .Field.Name}}, {{fieldSpec .Table .Field true}});

        if (!$dbman->field_exists($table, $field)) {
            $dbman->add_field($table, $field);
        }
`,

	ast.OpDropField: `
        $field = new xmldb_field({{q .Field.Name}});

        if ($dbman->field_exists($table, $field)) {
            $dbman->drop_field($table, $field);
        }
`,

	ast.OpChangeFieldType: `
        // Changing type of field {{.Field.Name}} on table {{.Table.Name}} to {{.Field.Type}}.
        $field = new xmldb_field({{q .Field.Name}}, {{fieldSpec .Table .Field true}});
        $dbman->change_field_type($table, $field);
`,

	ast.OpChangeFieldPrecision: `
        // Changing precision of field {{.Field.Name}} on table {{.Table.Name}} to {{.Field.Precision}}.
        $field = new xmldb_field({{q .Field.Name}}, {{fieldSpec .Table .Field true}});
        $dbman->change_field_precision($table, $field);
`,

	ast.OpChangeFieldNotNull: `
        // Changing nullability of field {{.Field.Name}} on table {{.Table.Name}} to {{if .Field.NotNull}}not null{{else}}null{{end}}.
        $field = new xmldb_field({{q .Field.Name}}, {{fieldSpec .Table .Field true}});
        $dbman->change_field_notnull($table, $field);
`,

	ast.OpChangeFieldDefault: `
        // Changing the default of field {{.Field.Name}} on table {{.Table.Name}} to {{defaultText .Field}}.
        $field = new xmldb_field({{q .Field.Name}}, {{fieldSpec .Table .Field true}});
        $dbman->change_field_default($table, $field);
`,
}

// blockSource wraps the rendered steps in the version guard.
const blockSource = `    if ($oldversion < {{.Version}}) {
{{range .TableSteps}}{{.}}{{end}}{{range .FieldGroups}}
        $table = new xmldb_table({{q .Table}});
{{range .Steps}}{{.}}{{end}}{{end}}{{.Savepoint}}    }

`

// savepointSource emits the checkpoint call for the component's plugin type.
const savepointSource = `
{{if eq .Type "core"}}        // Main savepoint reached.
        upgrade_main_savepoint(true, {{.Version}});
{{else}}        // {{ucfirst .Name}} savepoint reached.
{{if eq .Type "mod"}}        upgrade_mod_savepoint(true, {{.Version}}, {{q .Name}});
{{else if eq .Type "block"}}        upgrade_block_savepoint(true, {{.Version}}, {{q .Name}});
{{else}}        upgrade_plugin_savepoint(true, {{.Version}}, {{q .Type}}, {{q .Name}});
{{end}}{{end}}`
