// Package egk reads the insurant data stored on a German electronic health card
// (elektronische Gesundheitskarte, eGK).
//
// A session walks a fixed sequence of commands over one card connection:
//
//  1. check the ATR against an allow-list,
//  2. SELECT the root application and read the three EF.Version records,
//  3. optionally read EF.GDO for the card serial number (ICCSN),
//  4. SELECT the health care application (HCA) and read EF.StatusVD,
//  5. read EF.PD (personal data) and EF.VD (insurance data), both gzip compressed.
//
// The decompressed XML documents are returned as bytes; package vsd parses them.
package egk
