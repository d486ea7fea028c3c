// Package homeplug reads the powerline device registry of an AVM FRITZ!Box.
//
// The router exposes its registered powerline adapters through the TR-064
// service X_AVM-DE_Homeplug. A Service addresses one numbered instance of
// such a service; Powerline builds the registry operations on top of it.
//
// # Enumeration
//
// The router does not guarantee that GetNumberOfDeviceEntries agrees with
// the table it serves, so Devices pages through GetGenericDeviceEntry from
// index 0 until the router answers with SpecifiedArrayIndexInvalid (UPnP
// fault 713). Each probe is classified into a Lookup:
//
//   - LookupFound: the record is normalized into a DeviceInfo
//   - LookupExhausted: enumeration ends
//   - LookupFailed: enumeration aborts and the error is returned
//
// # Usage Example
//
//	client := tr064.NewClient(tr064.Config{Address: "fritz.box", Password: pw})
//	pl, err := homeplug.NewPowerline(client, homeplug.WithService(1))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	devices, err := pl.Devices(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(homeplug.FormatCompact(devices))
//
// # Addressing
//
// Service identifiers carry the instance number as a suffix
// ("X_AVM-DE_Homeplug1"). SuffixOmitFirst addresses instance 1 by the bare
// service name instead, for gateways that publish it that way.
package homeplug
