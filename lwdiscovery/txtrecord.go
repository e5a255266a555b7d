package lwdiscovery

import "fmt"

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT creates the TXT records advertised for info.
func EncodeTXT(info Info) TXTRecordMap {
	txt := make(TXTRecordMap)
	txt[TXTKeyEndpoint] = info.ServerName
	txt[TXTKeyBinding] = "U"
	if info.Version != "" {
		txt[TXTKeyVersion] = info.Version
	}
	return txt
}

// DecodeTXT parses TXT records back into an Info, as read by discovery
// clients browsing for a server.
func DecodeTXT(txt TXTRecordMap) (Info, error) {
	ep, ok := txt[TXTKeyEndpoint]
	if !ok || ep == "" {
		return Info{}, fmt.Errorf("lwdiscovery: missing required TXT key %q", TXTKeyEndpoint)
	}
	return Info{
		ServerName: ep,
		Version:    txt[TXTKeyVersion],
	}, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to "key=value" strings, the
// format zeroconf.Register expects.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		for i := 0; i < len(s); i++ {
			if s[i] == '=' {
				txt[s[:i]] = s[i+1:]
				break
			}
		}
	}
	return txt
}
