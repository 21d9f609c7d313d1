/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

/*
Package pipeline drives one packaging run from a project directory to a
container image and a packaged Helm chart.

A run is strictly sequential and stops at the first failure:

 1. validate the request
 2. detect the project type
 3. read the manifest metadata (name and version)
 4. create the workspace, write helper scripts, stage the project
 5. render and write the build file
 6. build the image, then push and extract a snapshot when requested
 7. render, lint, and package the chart
 8. push the chart to an OCI registry when one is configured
 9. write checksums.txt for every generated artifact

Metadata is read before anything is staged so a broken manifest fails
without side effects. Whatever the outcome, the run leaves its workspace in
place together with servicemaker-report.yaml and metrics.prom once the
workspace exists.

# Usage

	d := pipeline.New(pipeline.WithRunner(runner.NewExec(os.Stdout, os.Stderr)))
	rep, err := d.Run(ctx, req)
	if err != nil {
	    return err
	}
	fmt.Println(rep.Summary())

Every external command and internal step is recorded in the returned
result.Report and in the run's metrics. The report is returned even when
Run fails.
*/
package pipeline
