package main

const helpText = `Supported statements:
  SELECT ...       run a query and print the result set
  SHOW ...         list catalogs, schemas, tables, columns
  EXPLAIN ...      show the plan for a query
  DESCRIBE ...     describe a table

Session:
  USE <catalog>.<schema>   switch the active catalog and schema
  USE CATALOG <name>       switch the active catalog (clears the schema)
  USE SCHEMA <name>        switch the active schema

Terminators:
  ;        execute the buffered statement with aligned output
  \G       execute the buffered statement with vertical output

Filtering:
  <statement> FILTER WITH <column> <op> <value>
           filter the rendered rows client side

Commands:
  HELP     show this help
  EXIT     quit the console
  QUIT     quit the console`
