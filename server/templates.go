package server

import "fmt"

const (
	sourceFileName      = "app.py"
	manifestFileName    = "requirements.txt"
	procfileName        = "Procfile"
	setupScriptName     = "setup.sh"
	dockerfileName      = "Dockerfile"
	entrypointName      = "entrypoint.sh"
	buildDescriptorName = "heroku.yml"
	workflowFilePath    = ".github/workflows/deploy.yml"
	workflowFileName    = "deploy.yml"
)

type repoFile struct {
	Path    string
	Message string
	Content string
}

const setupScript = `mkdir -p ~/.streamlit/
echo "\
[server]\n\
headless = true\n\
port = $PORT\n\
enableCORS = false\n\
\n\
" > ~/.streamlit/config.toml
`

const dockerfile = `FROM python:3.11-slim

WORKDIR /app

COPY requirements.txt .

RUN pip install --no-cache-dir -r requirements.txt

COPY . .

EXPOSE 8000

RUN chmod +x entrypoint.sh

ENTRYPOINT ["./entrypoint.sh"]
`

const buildDescriptor = `build:
  docker:
    web: Dockerfile

run:
  web: ./entrypoint.sh
`

func entrypointScript(kind Kind) string {
	return fmt.Sprintf(`#!/bin/bash
# The platform injects the listen port at run time
exec %s
`, kind.RunCmd)
}

func procfile(kind Kind) string {
	return fmt.Sprintf("web: %s\n", kind.RunCmd)
}

// generatedFileSet is the fixed set of files every published repository gets,
// in commit order. The CI workflow file is not part of it, it is committed
// separately once the platform app exists.
func generatedFileSet(code, requirements string, kind Kind) []repoFile {
	return []repoFile{
		{Path: sourceFileName, Message: "initial commit", Content: code},
		{Path: manifestFileName, Message: "add requirements", Content: requirements},
		{Path: procfileName, Message: "add Procfile", Content: procfile(kind)},
		{Path: setupScriptName, Message: "add setup.sh", Content: setupScript},
		{Path: dockerfileName, Message: "add Dockerfile", Content: dockerfile},
		{Path: entrypointName, Message: "add entrypoint.sh", Content: entrypointScript(kind)},
		{Path: buildDescriptorName, Message: "add heroku.yml", Content: buildDescriptor},
	}
}

// workflowFile renders the CI definition that builds the container image,
// pushes it to the platform registry and releases it, authenticated by the
// repository secret provisioned earlier.
func workflowFile(appName string) string {
	return fmt.Sprintf(`name: Deploy to Heroku

on:
  workflow_dispatch:
  push:
    branches:
      - main

jobs:
  build-and-deploy:
    runs-on: ubuntu-latest

    steps:
      - name: Checkout code
        uses: actions/checkout@v3

      - name: Set up Docker Buildx
        uses: docker/setup-buildx-action@v2

      - name: Login to Heroku Container Registry
        run: echo "${{ secrets.HEROKU_API_KEY }}" | docker login --username=_ --password-stdin registry.heroku.com

      - name: Build Docker image
        run: docker build -t registry.heroku.com/%[1]s/web .

      - name: Push Docker image to Heroku
        run: docker push registry.heroku.com/%[1]s/web

      - name: Release app
        run: heroku container:release web --app %[1]s
        env:
          HEROKU_API_KEY: ${{ secrets.HEROKU_API_KEY }}
`, appName)
}
