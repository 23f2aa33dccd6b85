// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON. Required fields carry validate:"required"
tags; a missing field is reported to clients as the "missing" error kind.

  - SendOTPRequest: voterId, phone
  - VerifyOTPRequest: voterId, code
  - CastVoteRequest: electionId, participantId, voterId
  - AdminLoginRequest: username, password
  - CreateElectionRequest: name, participants (names)
  - SendTemplateRequest: to, contentSid, contentVariables

# Response Types

  - SendOTPResponse: ok, ttl, via (never the code)
  - VoteStatusResponse: hasVoted
  - CreateElectionResponse: ok, electionId
  - ElectionWithParticipants: election, participants with tallies
  - ElectionSummary: admin list entry
  - ElectionDetails: election plus individual vote rows
  - ErrorResponse: error (kind), message, hint, detail

# Domain Types

  - Election: id, name
  - Participant: candidate with a vote counter
  - Voter: durable proof of a completed OTP verification
  - Vote: one row per (election, voter), never updated
*/
package models
