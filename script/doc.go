// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package script runs link test scripts written in Starlark.
//
// A script runs as a Coroutine. Calls to sleep() and awaitResponse() do not
// block: they suspend the coroutine and hand a Request back to whoever
// called Resume. The caller arranges for the request to be satisfied, then
// resumes the coroutine with the matching Resume value.
//
// Script-visible builtins:
//
//	send(text, to=None)            send text or bytes, returns True on success
//	sendHex(hex, to=None)          send hex text ("AA BB 01"), returns True on success
//	sleep(ms)                      suspend for ms milliseconds
//	print(*args)                   emit script output
//	getLastData()                  latest unread payload as bytes, or b""
//	setResponseTimeout(ms)         set the awaitResponse timeout, ignored if ms <= 0
//	awaitResponse(prefix="", hex=False)
//	                               suspend until a payload starting with prefix
//	                               arrives; returns (True, "AA BB CC") or (False, None)
package script
