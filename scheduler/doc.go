// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package scheduler drives one script coroutine against a link.
//
// The Scheduler is a state machine over a single Session:
//
//	Idle -> Running                  ExecuteScript
//	Running -> Completed | Failed    script returned or raised
//	Running -> SuspendedSleep        sleep(ms), sleep timer armed
//	Running -> SuspendedAwaitingResponse
//	                                 awaitResponse(prefix), response timer armed
//	SuspendedSleep -> Running        sleep timer fired
//	SuspendedAwaitingResponse -> Running
//	                                 matching payload arrived, or timeout
//	any -> Idle                      Stop
//
// A Scheduler is not safe for concurrent use. Every method, and every
// function handed to the Clock, must run on one goroutine: the event loop.
// Scripts only run between two yield points, so Session state is never
// touched concurrently and no locks are needed.
package scheduler
