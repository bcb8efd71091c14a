/*
oaiharvest harvests Dublin Core metadata and linked files from an OAI-PMH
repository.

It pages through ListRecords with resumption tokens, downloads every linked
PDF or image into an output directory, and writes a CSV of the metadata and a
zip archive of the downloaded files.

# Usage

	oaiharvest harvest [flags]
	oaiharvest version

# Harvesting

	oaiharvest harvest --base-url 'http://atom.ape.es.gov.br/;oai' --set _15249 --output-dir alpia
	oaiharvest harvest --base-url https://repo.example/oai --ext pdf --concurrency 4
	oaiharvest harvest --base-url https://repo.example/oai --xlsx records.xlsx --sqlite records.db

Each downloaded file is named <stem>_<8-char-suffix><ext>; the record's
file_name column holds that name. With --rename files, every file receives a
second suffix after the harvest and is renamed on disk to match.

A failed file download is logged and the record is exported without a file
name. A failed page request or a malformed page stops the run.

# Configuration

Settings come from flags, then OAIHARVEST_* environment variables, then the
file given with --config:

	base_url: http://atom.ape.es.gov.br/;oai
	set: _15249
	output_dir: alpia
	csv: alpia.csv
	archive: alpia.zip
	extensions: [.pdf, .jpg, .jpeg, .png]
	concurrency: 2
	retry:
	  max_attempts: 3
	  initial_interval: 1s
	rename: none

# Outputs

	<output-dir>/        downloaded files
	<output-dir>.csv     title,creator,subject,date,format,identifier,description,relation,file_name
	<output-dir>.zip     every file under <output-dir>, by relative path
*/
package main

const usageText = `oaiharvest - OAI-PMH metadata and file harvester

Pages through ListRecords, downloads linked files, and exports the records
as CSV plus a zip archive of the files.

Environment:
  OAIHARVEST_BASE_URL, OAIHARVEST_SET, OAIHARVEST_OUTPUT_DIR, ...

Examples:
  oaiharvest harvest --base-url https://repo.example/oai --set books
  oaiharvest harvest --config harvest.yaml --concurrency 4

Run 'go doc github.com/tmc/oaiharvest/cmd/oaiharvest' for full documentation.`
