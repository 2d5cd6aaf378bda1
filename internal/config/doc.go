// Package config loads the HCL build file that tells the application which
// problem to build from a study, and where to put the results.
//
// A build file looks like:
//
//	name              = "weekly"
//	scenarios         = 2
//	border_management = "CYCLE"
//	problem_type      = "simulator"
//	output_dir        = "outputs/lp"
//	solve             = true
//
//	block {
//	  id        = 1
//	  timesteps = range(0, 168)
//	}
//
//	log {
//	  level  = "debug"
//	  format = "json"
//	}
//
// Every attribute has a default except the block.
package config
